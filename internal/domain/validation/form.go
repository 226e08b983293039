package validation

import (
	"context"
	"sync"
)

// Default form failure messages.
const (
	msgSubmitFailed = "Submission failed. Please try again."
	msgSubmitError  = "An error occurred. Please try again."
)

// SubmitOutcome is what a SubmitFunc reports for a business-level result.
type SubmitOutcome struct {
	Success bool
	Error   string
}

// SubmitFunc delivers validated form data. A returned error means the call
// itself failed, not that the data was rejected.
type SubmitFunc func(ctx context.Context, data map[string]string) (SubmitOutcome, error)

// FormStatus is a snapshot of a Form.
type FormStatus struct {
	Values     map[string]string
	Errors     map[string]string
	Touched    map[string]bool
	Fields     map[string]Result
	Submitting bool
	Success    bool
	Failed     bool
	ErrorMsg   string
}

// Form tracks values, touched flags and per-field validation for a catalog.
// It is safe for concurrent use.
type Form struct {
	mu      sync.Mutex
	catalog Catalog
	initial map[string]string
	submit  SubmitFunc

	values     map[string]string
	errors     map[string]string
	touched    map[string]bool
	fields     map[string]Result
	submitting bool
	success    bool
	failed     bool
	errorMsg   string
}

// NewForm creates a form over catalog seeded with initial values.
func NewForm(initial map[string]string, catalog Catalog, submit SubmitFunc) *Form {
	f := &Form{
		catalog: catalog,
		initial: copyStrings(initial),
		submit:  submit,
	}
	f.resetLocked()
	return f
}

// Set updates a value, marks the field touched and validates it.
// It reports whether the field is valid. Fields outside the catalog are
// stored but never validated.
func (f *Form) Set(name, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	cfg, ok := f.catalog[name]
	if !ok {
		return true
	}
	f.touched[name] = true
	r := ValidateField(name, value, cfg)
	f.fields[name] = r
	f.errors[name] = r.Message
	return r.IsValid
}

// Validate checks the whole form and publishes every field error.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() bool {
	res := ValidateForm(f.values, f.catalog)
	f.errors = res.Errors
	return res.IsValid
}

// Submit validates, drops honeypot submissions silently, then calls the
// SubmitFunc. It reports whether the data was accepted.
func (f *Form) Submit(ctx context.Context) bool {
	f.mu.Lock()
	f.success, f.failed, f.errorMsg = false, false, ""
	if f.submitting || !f.validateLocked() || f.values[FieldHoneypot] != "" {
		f.mu.Unlock()
		return false
	}
	f.submitting = true
	data := copyStrings(f.values)
	f.mu.Unlock()

	outcome, err := f.submit(ctx, data)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	switch {
	case err != nil:
		f.failed = true
		f.errorMsg = err.Error()
		if f.errorMsg == "" {
			f.errorMsg = msgSubmitError
		}
	case outcome.Success:
		f.success = true
		f.resetLocked()
	default:
		f.failed = true
		f.errorMsg = outcome.Error
		if f.errorMsg == "" {
			f.errorMsg = msgSubmitFailed
		}
	}
	return f.success
}

// Reset restores initial values and clears validation state.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Form) resetLocked() {
	f.values = copyStrings(f.initial)
	f.errors = make(map[string]string, len(f.catalog))
	f.touched = make(map[string]bool, len(f.catalog))
	f.fields = make(map[string]Result, len(f.catalog))
	for name := range f.catalog {
		f.errors[name] = ""
		f.touched[name] = false
		f.fields[name] = Result{}
	}
}

// Status returns a copy of the current state.
func (f *Form) Status() FormStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := FormStatus{
		Values:     copyStrings(f.values),
		Errors:     copyStrings(f.errors),
		Touched:    make(map[string]bool, len(f.touched)),
		Fields:     make(map[string]Result, len(f.fields)),
		Submitting: f.submitting,
		Success:    f.success,
		Failed:     f.failed,
		ErrorMsg:   f.errorMsg,
	}
	for k, v := range f.touched {
		st.Touched[k] = v
	}
	for k, v := range f.fields {
		st.Fields[k] = v
	}
	return st
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
