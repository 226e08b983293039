package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/portfolio/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func validRequest() map[string]string {
	return map[string]string{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"email":        "ada@example.com",
		"resumeHeader": "Analyst",
		"skills":       "Math, Engines",
	}
}

func TestRules(t *testing.T) {
	Convey("Required", t, func() {
		So(validation.Required("", "First Name"), ShouldEqual, "First Name is required")
		So(validation.Required("   \t", "First Name"), ShouldEqual, "First Name is required")
		So(validation.Required("x", "First Name"), ShouldBeEmpty)
	})

	Convey("MinLength counts trimmed characters", t, func() {
		rule := validation.MinLength(3)
		So(rule(" ab ", "Resume Header"), ShouldEqual, "Resume Header must be at least 3 characters")
		So(rule("abc", "Resume Header"), ShouldBeEmpty)
		So(rule("", "Resume Header"), ShouldBeEmpty)
		So(validation.MinLength(2)("éé", "x"), ShouldBeEmpty)
	})

	Convey("Email", t, func() {
		So(validation.Email("a@b.co", ""), ShouldBeEmpty)
		So(validation.Email("ab.co", ""), ShouldEqual, "Please enter a valid email address")
		So(validation.Email("a@bco", ""), ShouldNotBeEmpty)
		So(validation.Email("a b@c.de", ""), ShouldNotBeEmpty)
		So(validation.Email("a@@b.co", ""), ShouldNotBeEmpty)
	})

	Convey("SkillsList", t, func() {
		So(validation.SkillsList("JS, Vue", ""), ShouldBeEmpty)
		So(validation.ParseSkills("JS, Vue"), ShouldResemble, []string{"JS", "Vue"})
		So(validation.SkillsList("", ""), ShouldEqual, "Please enter at least one valid skill")
		So(validation.SkillsList(" , ,", ""), ShouldNotBeEmpty)
	})
}

func TestValidateField(t *testing.T) {
	catalog := validation.PortfolioRequestFields()

	Convey("Given the portfolio request catalog", t, func() {
		Convey("Every required field names its label when blank", func() {
			for _, name := range catalog.Names() {
				cfg := catalog[name]
				r := validation.ValidateField(name, "  ", cfg)
				So(r.IsValid, ShouldBeFalse)
				So(r.Message, ShouldContainSubstring, cfg.Label)
			}
		})

		Convey("The first failing rule wins", func() {
			r := validation.ValidateField("firstName", "A", catalog["firstName"])
			So(r, ShouldResemble, validation.Result{IsValid: false, Message: "First Name must be at least 2 characters"})
		})

		Convey("The field name stands in for a missing label", func() {
			r := validation.ValidateField("nickname", "", validation.FieldConfig{Rules: []validation.Rule{validation.Required}})
			So(r.Message, ShouldEqual, "nickname is required")
		})

		Convey("A field without rules always passes", func() {
			So(validation.ValidateField("x", "", validation.FieldConfig{}).IsValid, ShouldBeTrue)
		})
	})
}

func TestValidateForm(t *testing.T) {
	catalog := validation.PortfolioRequestFields()

	Convey("A complete request is valid with empty messages", t, func() {
		res := validation.ValidateForm(validRequest(), catalog)
		So(res.IsValid, ShouldBeTrue)
		So(res.Errors, ShouldHaveLength, 5)
		for _, msg := range res.Errors {
			So(msg, ShouldBeEmpty)
		}
	})

	Convey("One bad field makes the form invalid", t, func() {
		data := validRequest()
		data["email"] = "nope"
		res := validation.ValidateForm(data, catalog)
		So(res.IsValid, ShouldBeFalse)
		So(res.Errors["email"], ShouldEqual, "Please enter a valid email address")
		So(res.Errors["firstName"], ShouldBeEmpty)
	})

	Convey("Missing keys validate as empty", t, func() {
		res := validation.ValidateForm(map[string]string{}, catalog)
		So(res.IsValid, ShouldBeFalse)
		So(res.Errors["skills"], ShouldEqual, "Skills (comma separated) is required")
	})
}

func TestForm(t *testing.T) {
	ctx := context.Background()
	catalog := validation.PortfolioRequestFields()
	initial := map[string]string{"firstName": "", "lastName": "", "email": "", "resumeHeader": "", "skills": "", "_gotcha": ""}

	Convey("Given a form with a recording submit func", t, func() {
		var calls []map[string]string
		outcome := validation.SubmitOutcome{Success: true}
		var submitErr error
		form := validation.NewForm(initial, catalog, func(_ context.Context, data map[string]string) (validation.SubmitOutcome, error) {
			calls = append(calls, data)
			return outcome, submitErr
		})

		fill := func() {
			for k, v := range validRequest() {
				form.Set(k, v)
			}
		}

		Convey("Set marks the field touched and reports its error", func() {
			So(form.Set("firstName", "A"), ShouldBeFalse)
			st := form.Status()
			So(st.Touched["firstName"], ShouldBeTrue)
			So(st.Touched["lastName"], ShouldBeFalse)
			So(st.Errors["firstName"], ShouldEqual, "First Name must be at least 2 characters")
		})

		Convey("Submitting an invalid form never calls submit", func() {
			form.Set("firstName", "Ada")
			So(form.Submit(ctx), ShouldBeFalse)
			So(calls, ShouldBeEmpty)
			So(form.Status().Errors["email"], ShouldEqual, "Contact Email is required")
		})

		Convey("A filled honeypot is dropped silently", func() {
			fill()
			form.Set("_gotcha", "bot")
			So(form.Submit(ctx), ShouldBeFalse)
			So(calls, ShouldBeEmpty)
			So(form.Status().Failed, ShouldBeFalse)
		})

		Convey("A successful submit resets the form", func() {
			fill()
			So(form.Submit(ctx), ShouldBeTrue)
			So(calls, ShouldHaveLength, 1)
			So(calls[0]["email"], ShouldEqual, "ada@example.com")
			st := form.Status()
			So(st.Success, ShouldBeTrue)
			So(st.Values["email"], ShouldBeEmpty)
			So(st.Touched["email"], ShouldBeFalse)
		})

		Convey("A rejection keeps values and records the server message", func() {
			outcome = validation.SubmitOutcome{Success: false}
			fill()
			So(form.Submit(ctx), ShouldBeFalse)
			st := form.Status()
			So(st.Failed, ShouldBeTrue)
			So(st.ErrorMsg, ShouldEqual, "Submission failed. Please try again.")
			So(st.Values["email"], ShouldEqual, "ada@example.com")
		})

		Convey("A transport error surfaces its message", func() {
			submitErr = errors.New("Network error. Please check your connection and try again.")
			fill()
			So(form.Submit(ctx), ShouldBeFalse)
			So(form.Status().ErrorMsg, ShouldEqual, "Network error. Please check your connection and try again.")
			So(form.Status().Submitting, ShouldBeFalse)
		})
	})
}

func TestError(t *testing.T) {
	Convey("A validation error is an ErrInvalid carrying its message", t, func() {
		var err error = validation.NewError("email", "Invalid email address.")
		So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "Invalid email address.")
	})
}
