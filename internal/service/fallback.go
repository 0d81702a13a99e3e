package service

import (
	"net/url"

	"aa-consent-gateway/internal/model"
)

// CustomerIDSuffix turns a contact number into an AA customer identifier
const CustomerIDSuffix = "@finvu"

// undefinedValue is substituted into the default return URL for session
// fields that are missing.
const undefinedValue = "undefined"

// lookup yields a value and whether it is present
type lookup[T any] func() (T, bool)

// firstOf evaluates chain in order and returns the first present value.
// Later entries are not evaluated once a value is found.
func firstOf[T any](chain ...lookup[T]) (T, bool) {
	for _, next := range chain {
		if v, ok := next(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func explicit(v string) lookup[string] {
	return func() (string, bool) { return v, v != "" }
}

func always[T any](v T) lookup[T] {
	return func() (T, bool) { return v, true }
}

// contactCustomerID derives a customer id from the session's contact number
func contactCustomerID(rec *model.SessionRecord) lookup[string] {
	return func() (string, bool) {
		if rec == nil {
			return "", false
		}
		number, ok := rec.FormData.ContactNumber()
		if !ok {
			return "", false
		}
		return number + CustomerIDSuffix, true
	}
}

// explicitHandles is present whenever the caller supplied the field, even empty
func explicitHandles(handles []string) lookup[[]string] {
	return func() ([]string, bool) { return handles, handles != nil }
}

func sessionHandle(rec *model.SessionRecord) lookup[[]string] {
	return func() ([]string, bool) {
		if rec == nil || rec.ConsentHandler == "" {
			return nil, false
		}
		return []string{rec.ConsentHandler}, true
	}
}

// defaultReturnURL appends session_id and transaction_id from the session
// to base, using "undefined" for any that are missing.
func defaultReturnURL(base string, rec *model.SessionRecord) lookup[string] {
	return func() (string, bool) {
		sessionID, transactionID := undefinedValue, undefinedValue
		if rec != nil {
			if rec.SessionID != "" {
				sessionID = rec.SessionID
			}
			if rec.TransactionID != "" {
				transactionID = rec.TransactionID
			}
		}

		u, err := url.Parse(base)
		if err != nil {
			return base + "?session_id=" + url.QueryEscape(sessionID) +
				"&transaction_id=" + url.QueryEscape(transactionID), true
		}
		q := u.Query()
		q.Set("session_id", sessionID)
		q.Set("transaction_id", transactionID)
		u.RawQuery = q.Encode()
		return u.String(), true
	}
}

// verifyFields are the values a verify call resolves before submission
type verifyFields struct {
	CustomerID     string
	ConsentHandles []string
	ReturnURL      string
	RedirectURL    string
	LSPID          string
}

// resolveVerifyFields applies the fallback chains for a verify request.
// rec may be nil when no session was found.
func resolveVerifyFields(req *model.ConsentVerifyRequest, rec *model.SessionRecord, defaults verifyDefaults) verifyFields {
	customerID, _ := firstOf(
		explicit(req.UserID),
		contactCustomerID(rec),
	)
	handles, _ := firstOf(
		explicitHandles(req.ConsentHandles),
		sessionHandle(rec),
		always([]string{}),
	)
	returnURL, _ := firstOf(
		explicit(req.ReturnURL),
		defaultReturnURL(defaults.ReturnURL, rec),
	)
	redirectURL, _ := firstOf(
		explicit(req.RedirectURL),
		always(defaults.RedirectURL),
	)
	lspID, _ := firstOf(
		explicit(req.LSPID),
		always(defaults.LSPID),
	)

	return verifyFields{
		CustomerID:     customerID,
		ConsentHandles: handles,
		ReturnURL:      returnURL,
		RedirectURL:    redirectURL,
		LSPID:          lspID,
	}
}

type verifyDefaults struct {
	ReturnURL   string
	RedirectURL string
	LSPID       string
}
