package model

// Purpose describes why consent is being requested
type Purpose struct {
	Category PurposeCategory `json:"Category"`
	Code     string          `json:"code"`
	RefURI   string          `json:"refUri"`
	Text     string          `json:"text"`
}

// PurposeCategory is the purpose classification
type PurposeCategory struct {
	Type string `json:"type"`
}

// DefaultPurpose returns the Financial Reporting purpose block
func DefaultPurpose() Purpose {
	return Purpose{
		Category: PurposeCategory{Type: "Financial Reporting"},
		Code:     "101",
		RefURI:   "https://api.rebit.org.in/aa/purpose/101.xml",
		Text:     "To offer customized financial products",
	}
}

// Merge fills every empty field of p from def
func (p *Purpose) Merge(def Purpose) Purpose {
	if p == nil {
		return def
	}
	out := *p
	if out.Category.Type == "" {
		out.Category.Type = def.Category.Type
	}
	if out.Code == "" {
		out.Code = def.Code
	}
	if out.RefURI == "" {
		out.RefURI = def.RefURI
	}
	if out.Text == "" {
		out.Text = def.Text
	}
	return out
}

// ConsentGenerateRequest represents an inbound consent generation request
type ConsentGenerateRequest struct {
	CustID             string   `json:"custId"`
	TemplateName       string   `json:"templateName,omitempty"`
	ConsentDescription string   `json:"consentDescription,omitempty"`
	RedirectURL        string   `json:"redirectUrl,omitempty"`
	Purpose            *Purpose `json:"purpose,omitempty"`
	FIP                []string `json:"fip,omitempty"`
}

// ConsentGenerateResponse is the projection of a ConsentRequestPlus reply
type ConsentGenerateResponse struct {
	ConsentHandler   string `json:"consentHandler,omitempty"`
	EncryptedRequest string `json:"encryptedRequest,omitempty"`
	RequestDate      string `json:"requestDate,omitempty"`
	EncryptedFiuID   string `json:"encryptedFiuId,omitempty"`
	URL              string `json:"url,omitempty"`
}

// ConsentVerifyRequest represents an inbound consent verification request.
// A nil ConsentHandles means the caller did not supply the field.
type ConsentVerifyRequest struct {
	UserID         string   `json:"userId,omitempty"`
	ConsentHandles []string `json:"consentHandles,omitempty"`
	LSPID          string   `json:"lspId,omitempty"`
	ReturnURL      string   `json:"returnUrl,omitempty"`
	RedirectURL    string   `json:"redirectUrl,omitempty"`
	TransactionID  string   `json:"transactionId,omitempty"`
}

// ConsentVerifyResponse carries the URL the end user opens to approve consent
type ConsentVerifyResponse struct {
	URL string `json:"url,omitempty"`
}

// ConsentDetails wraps the purpose block in ConsentRequestPlus
type ConsentDetails struct {
	Purpose Purpose `json:"Purpose"`
}

// ConsentRequestPlusBody is the outbound body for ConsentRequestPlus
type ConsentRequestPlusBody struct {
	AAID               string         `json:"aaId"`
	ConsentDescription string         `json:"consentDescription"`
	ConsentDetails     ConsentDetails `json:"ConsentDetails"`
	CustID             string         `json:"custId"`
	FIP                []string       `json:"fip"`
	RedirectURL        string         `json:"redirectUrl"`
	TemplateName       string         `json:"templateName"`
	UserSessionID      string         `json:"userSessionId"`
}

// ConsentRequestPlusResult is the body returned by ConsentRequestPlus
type ConsentRequestPlusResult struct {
	ConsentHandle    string `json:"ConsentHandle"`
	EncryptedRequest string `json:"encryptedRequest"`
	RequestDate      string `json:"requestDate"`
	EncryptedFiuID   string `json:"encryptedFiuId"`
	URL              string `json:"url"`
}

// EncryptLspConsentBody is the outbound body for EncryptLspConsentRequest.
// An empty UserID is omitted from the wire.
type EncryptLspConsentBody struct {
	LSPID          string   `json:"lspId"`
	ConsentHandles []string `json:"consentHandles"`
	UserID         string   `json:"userId,omitempty"`
	URL            string   `json:"url"`
	ReturnURL      string   `json:"returnUrl"`
}

// EncryptLspConsentResult is the body returned by EncryptLspConsentRequest
type EncryptLspConsentResult struct {
	URL string `json:"url"`
}

// ErrorResponse is the JSON body returned on failed inbound calls
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
