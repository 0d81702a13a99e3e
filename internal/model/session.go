package model

import (
	"bytes"
	"encoding/json"
)

// LoanProduct names a loan-product form inside session form_data
type LoanProduct string

const (
	ProductPersonalLoan    LoanProduct = "personal_loan_information_form"
	ProductConsumer        LoanProduct = "consumer_information_form"
	ProductPersonalDetails LoanProduct = "personal_details_information_form"
)

// contactPriority is the order in which product forms are searched for a contact number
var contactPriority = []LoanProduct{
	ProductPersonalLoan,
	ProductConsumer,
	ProductPersonalDetails,
}

// SessionRecord is the workflow state cached under a session key.
// Every field may be absent. Keys this type does not model are kept in
// Extensions and written back unchanged.
type SessionRecord struct {
	TransactionID  string   `json:"transaction_id,omitempty"`
	MessageID      string   `json:"message_id,omitempty"`
	CustomerID     string   `json:"customer_id,omitempty"`
	ConsentHandler string   `json:"consent_handler,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	FormData       FormData `json:"form_data,omitempty"`

	Extensions map[string]json.RawMessage `json:"-"`
}

// FormData holds the per-product forms. Forms for products not listed in
// LoanProduct are kept in Extensions.
type FormData struct {
	Forms      map[LoanProduct]ContactForm
	Extensions map[string]json.RawMessage
}

// ContactForm is a loan-product form. Only contactNumber is interpreted.
type ContactForm struct {
	ContactNumber string
	Fields        map[string]json.RawMessage
}

// ContactNumber walks the product forms in priority order and returns the
// first non-empty contact number.
func (f FormData) ContactNumber() (string, bool) {
	for _, product := range contactPriority {
		form, ok := f.Forms[product]
		if ok && form.ContactNumber != "" {
			return form.ContactNumber, true
		}
	}
	return "", false
}

// IsZero reports whether no form data is present
func (f FormData) IsZero() bool {
	return len(f.Forms) == 0 && len(f.Extensions) == 0
}

// UnmarshalJSON decodes field by field. A known key holding a value of the
// wrong type is treated as absent and kept in Extensions, so one malformed
// field never hides the rest of the session.
func (r *SessionRecord) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	out := SessionRecord{}
	for key, raw := range all {
		var dst *string
		switch key {
		case "transaction_id":
			dst = &out.TransactionID
		case "message_id":
			dst = &out.MessageID
		case "customer_id":
			dst = &out.CustomerID
		case "consent_handler":
			dst = &out.ConsentHandler
		case "session_id":
			dst = &out.SessionID
		case "form_data":
			if isNull(raw) {
				continue
			}
			if isObject(raw) && json.Unmarshal(raw, &out.FormData) == nil {
				continue
			}
			out.setExtension(key, raw)
			continue
		default:
			out.setExtension(key, raw)
			continue
		}

		if v, ok := scalarString(raw); ok {
			*dst = v
		} else if !isNull(raw) {
			out.setExtension(key, raw)
		}
	}

	*r = out
	return nil
}

func (r *SessionRecord) setExtension(key string, raw json.RawMessage) {
	if r.Extensions == nil {
		r.Extensions = make(map[string]json.RawMessage)
	}
	r.Extensions[key] = raw
}

func (r SessionRecord) MarshalJSON() ([]byte, error) {
	type plain SessionRecord
	p := plain(r)
	if p.FormData.IsZero() {
		// omitempty does not apply to structs
		return mergeKeys(p, r.Extensions, "form_data")
	}
	return mergeKeys(p, r.Extensions)
}

func (f *FormData) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*f = FormData{}
		return nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	out := FormData{}
	for key, raw := range all {
		product := LoanProduct(key)
		// forms that are not objects are kept verbatim and not consulted
		if !isKnownProduct(product) || !isObject(raw) {
			if out.Extensions == nil {
				out.Extensions = make(map[string]json.RawMessage)
			}
			out.Extensions[key] = raw
			continue
		}
		var form ContactForm
		if err := json.Unmarshal(raw, &form); err != nil {
			return err
		}
		if out.Forms == nil {
			out.Forms = make(map[LoanProduct]ContactForm)
		}
		out.Forms[product] = form
	}
	*f = out
	return nil
}

func (f FormData) MarshalJSON() ([]byte, error) {
	all := make(map[string]json.RawMessage, len(f.Forms)+len(f.Extensions))
	for key, raw := range f.Extensions {
		all[key] = raw
	}
	for product, form := range f.Forms {
		raw, err := json.Marshal(form)
		if err != nil {
			return nil, err
		}
		all[string(product)] = raw
	}
	return json.Marshal(all)
}

func (c *ContactForm) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*c = ContactForm{}
		return nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	out := ContactForm{Fields: all}
	if number, ok := scalarString(all["contactNumber"]); ok {
		out.ContactNumber = number
		delete(all, "contactNumber")
	}
	*c = out
	return nil
}

func (c ContactForm) MarshalJSON() ([]byte, error) {
	all := make(map[string]json.RawMessage, len(c.Fields)+1)
	for key, raw := range c.Fields {
		all[key] = raw
	}
	if c.ContactNumber != "" {
		raw, err := json.Marshal(c.ContactNumber)
		if err != nil {
			return nil, err
		}
		all["contactNumber"] = raw
	}
	return json.Marshal(all)
}

func isKnownProduct(p LoanProduct) bool {
	for _, known := range contactPriority {
		if p == known {
			return true
		}
	}
	return false
}

// scalarString accepts a JSON string or number and returns its text form.
// Strings are returned as-is. Any other JSON type reports ok=false.
func scalarString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// mergeKeys marshals v, drops the listed keys and adds extra keys that v does not set
func mergeKeys(v any, extra map[string]json.RawMessage, drop ...string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	for _, key := range drop {
		delete(all, key)
	}
	for key, value := range extra {
		if _, exists := all[key]; !exists {
			all[key] = value
		}
	}
	return json.Marshal(all)
}
