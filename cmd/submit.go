package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/portfolio/internal/client/formservice"
	"github.com/okian/portfolio/internal/config"
	"github.com/okian/portfolio/internal/domain/validation"
)

var submitReq formservice.PortfolioRequest

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send a portfolio request to a running server",
	Long:  "Validates the fields like the page form does and posts them to api_base_url.",
	RunE:  runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitReq.FirstName, "first-name", "", "First name")
	f.StringVar(&submitReq.LastName, "last-name", "", "Last name")
	f.StringVar(&submitReq.Email, "email", "", "Contact email")
	f.StringVar(&submitReq.ResumeHeader, "resume-header", "", "Resume header")
	f.StringVar(&submitReq.Skills, "skills", "", "Comma separated skills")
	rootCmd.AddCommand(submitCmd)
}

// printNotifier renders toasts as lines.
type printNotifier struct{ w io.Writer }

func (p printNotifier) ShowSuccess(title, message string) string {
	_, _ = fmt.Fprintf(p.w, "%s: %s\n", title, message)
	return title
}

func (p printNotifier) ShowError(title, message string) string {
	_, _ = fmt.Fprintf(p.w, "%s: %s\n", title, message)
	return title
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	catalog := validation.PortfolioRequestFields()
	form := validation.ValidateForm(map[string]string{
		validation.FieldFirstName:    submitReq.FirstName,
		validation.FieldLastName:     submitReq.LastName,
		validation.FieldEmail:        submitReq.Email,
		validation.FieldResumeHeader: submitReq.ResumeHeader,
		validation.FieldSkills:       submitReq.Skills,
	}, catalog)
	if !form.IsValid {
		for _, name := range catalog.Names() {
			if msg := form.Errors[name]; msg != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, msg)
			}
		}
		return errors.New("invalid request")
	}

	client := formservice.New(cfg.APIBaseURL, printNotifier{w: cmd.OutOrStdout()},
		formservice.WithTimeout(cfg.ClientTimeout()))
	res, err := client.SubmitPortfolioRequest(ctx, submitReq)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("rejected: %s", res.Error)
	}
	return nil
}
