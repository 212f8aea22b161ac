package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"roamly/api/cart"
)

// Step is a checkout stage.
type Step string

const (
	StepInfo    Step = "info"
	StepPayment Step = "payment"
	StepSuccess Step = "success"
)

// Method is one of the manual payment options. Payment happens outside the
// site; the visitor uploads proof of the transfer.
type Method string

const (
	BankTransfer Method = "bank_transfer"
	PayPal       Method = "paypal"
	Wise         Method = "wise"
	Payoneer     Method = "payoneer"
	UPI          Method = "upi"
	CryptoUSDT   Method = "crypto_usdt"
	WesternUnion Method = "western_union"
)

// Methods lists the accepted payment methods in display order.
var Methods = []Method{BankTransfer, PayPal, Wise, Payoneer, UPI, CryptoUSDT, WesternUnion}

var (
	// ErrInvalidTransition is returned when an action is not allowed from the current step.
	ErrInvalidTransition = errors.New("checkout: invalid transition")
	// ErrEmptyCart is returned when payment is submitted with nothing in the cart.
	ErrEmptyCart = errors.New("checkout: cart is empty")
)

// Contact is collected on the info step.
type Contact struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (c Contact) trimmed() Contact {
	c.Email = strings.TrimSpace(c.Email)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Country = strings.TrimSpace(c.Country)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// Payment is collected on the payment step.
type Payment struct {
	Method      Method `json:"method" validate:"required,oneof=bank_transfer paypal wise payoneer upi crypto_usdt western_union"`
	ProofURL    string `json:"proofUrl" validate:"required,url"`
	AcceptTerms bool   `json:"acceptTerms" validate:"required"`
}

// Order is what gets recorded when payment is submitted.
type Order struct {
	Contact Contact
	Payment Payment
	Lines   []cart.Line
	Total   decimal.Decimal
}

// ValidationError lists the fields that failed validation, by their JSON names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "checkout: invalid fields: " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}
