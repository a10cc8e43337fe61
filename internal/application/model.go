package application

import "time"

// Review statuses. The stored values keep the German terms the portal shows.
// "draft" never hits the store: an absent record is the draft state, with
// every field editable.
const (
	StatusSubmitted        = "eingereicht"
	StatusApproved         = "freigegeben"
	StatusChangesRequested = "korrektur_erforderlich"
)

// Application is one user's onboarding record: personal data, the seven
// single-document slots, the multi-document bank list, and the review state.
type Application struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`

	FirstName   string `bson:"first_name" json:"first_name"`
	LastName    string `bson:"last_name" json:"last_name"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone" json:"phone"`
	Street      string `bson:"street" json:"street"`
	HouseNumber string `bson:"house_number" json:"house_number"`
	PostalCode  string `bson:"postal_code" json:"postal_code"`
	City        string `bson:"city" json:"city"`

	IDFrontURL       string   `bson:"id_front_url,omitempty" json:"id_front_url,omitempty"`
	IDBackURL        string   `bson:"id_back_url,omitempty" json:"id_back_url,omitempty"`
	IDSelfieURL      string   `bson:"id_selfie_url,omitempty" json:"id_selfie_url,omitempty"`
	GiroFrontURL     string   `bson:"giro_front_url,omitempty" json:"giro_front_url,omitempty"`
	GiroBackURL      string   `bson:"giro_back_url,omitempty" json:"giro_back_url,omitempty"`
	CreditFrontURL   string   `bson:"credit_front_url,omitempty" json:"credit_front_url,omitempty"`
	CreditBackURL    string   `bson:"credit_back_url,omitempty" json:"credit_back_url,omitempty"`
	BankDocumentURLs []string `bson:"bank_documents_urls" json:"bank_documents_urls"`

	Status         string   `bson:"status" json:"status"`
	AdminFeedback  string   `bson:"admin_feedback,omitempty" json:"admin_feedback,omitempty"`
	UnlockedFields []string `bson:"unlocked_fields" json:"unlocked_fields"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FieldNames an admin may put into the unlock-set.
var FieldNames = []string{
	"first_name", "last_name", "email", "phone",
	"street", "house_number", "postal_code", "city",
	"id_front_url", "id_back_url", "id_selfie_url",
	"giro_front_url", "giro_back_url",
	"credit_front_url", "credit_back_url",
	"bank_documents_urls",
}

// FieldEditable applies the per-field editability rule: everything is
// editable before the first submission; afterwards only fields named in a
// non-empty unlock-set. An empty unlock-set on an existing submission means
// pure view mode. Evaluated per field on every call, never cached.
func FieldEditable(app *Application, field string) bool {
	if app == nil {
		return true
	}
	if len(app.UnlockedFields) == 0 {
		return false
	}
	for _, f := range app.UnlockedFields {
		if f == field {
			return true
		}
	}
	return false
}

func validFieldName(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}
