package validation

// Result is the outcome of validating one field.
type Result struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// FormResult is the outcome of validating a whole form. Errors holds an entry
// for every configured field, "" when the field passed.
type FormResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// ValidateField runs the rules of cfg in order and stops at the first failure.
func ValidateField(name, value string, cfg FieldConfig) Result {
	label := cfg.Label
	if label == "" {
		label = name
	}
	for _, rule := range cfg.Rules {
		if msg := rule(value, label); msg != "" {
			return Result{IsValid: false, Message: msg}
		}
	}
	return Result{IsValid: true}
}

// ValidateForm validates every field of the catalog against data.
// Missing keys validate as the empty string.
func ValidateForm(data map[string]string, catalog Catalog) FormResult {
	res := FormResult{IsValid: true, Errors: make(map[string]string, len(catalog))}
	for _, name := range catalog.Names() {
		r := ValidateField(name, data[name], catalog[name])
		res.Errors[name] = r.Message
		if !r.IsValid {
			res.IsValid = false
		}
	}
	return res
}
