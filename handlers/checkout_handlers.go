package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/checkout"
	"roamly/api/middleware"
	"roamly/api/storage"
)

const proofPrefix = "proofs"

type CheckoutHandlers struct {
	Visitors visitorSource
	Uploader storage.Uploader
	logger   *zap.Logger
}

func NewCheckoutHandlers(visitors visitorSource, uploader storage.Uploader, logger *zap.Logger) *CheckoutHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandlers{Visitors: visitors, Uploader: uploader, logger: logger}
}

func (h *CheckoutHandlers) flow(c *gin.Context) *checkout.Flow {
	return h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c)).Checkout
}

func (h *CheckoutHandlers) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.flow(c).Snapshot())
}

func (h *CheckoutHandlers) SubmitInfo(c *gin.Context) {
	var req checkout.Contact
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	f := h.flow(c)
	if err := f.SubmitInfo(req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f.Snapshot())
}

func (h *CheckoutHandlers) Back(c *gin.Context) {
	f := h.flow(c)
	if err := f.Back(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f.Snapshot())
}

// SubmitPayment takes a multipart form with method, acceptTerms and the proof
// image. Step, cart and form fields are checked before the proof is uploaded.
func (h *CheckoutHandlers) SubmitPayment(c *gin.Context) {
	visitor := h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c))
	f := visitor.Checkout
	if f.Step() != checkout.StepPayment {
		h.fail(c, checkout.ErrInvalidTransition)
		return
	}
	if visitor.Cart.Count() == 0 {
		h.fail(c, checkout.ErrEmptyCart)
		return
	}

	accept, err := parseAcceptTerms(c.PostForm("acceptTerms"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "acceptTerms must be true, false or on",
			"fields": []string{"acceptTerms"},
		})
		return
	}
	payment := checkout.Payment{
		Method:      checkout.Method(c.PostForm("method")),
		AcceptTerms: accept,
	}
	var missing []string
	if !knownMethod(payment.Method) {
		missing = append(missing, "method")
	}
	if !payment.AcceptTerms {
		missing = append(missing, "acceptTerms")
	}
	file, err := c.FormFile("proof")
	if err != nil {
		missing = append(missing, "proof")
	}
	if len(missing) > 0 {
		h.fail(c, &checkout.ValidationError{Fields: missing})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read transaction proof"})
		return
	}
	defer src.Close()

	ctx, cancel := withTimeout(c)
	defer cancel()

	url, err := storage.UploadImage(ctx, h.Uploader, proofPrefix, src)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrTooLarge):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Transaction proof must be an image under 10 MB", "fields": []string{"proof"}})
		default:
			h.logger.Error("upload transaction proof", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload transaction proof"})
		}
		return
	}
	payment.ProofURL = url

	if _, err := f.SubmitPayment(ctx, payment); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f.Snapshot())
}

// parseAcceptTerms reads the terms checkbox. Browsers send "on" for a checked
// box and omit the field otherwise.
func parseAcceptTerms(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, nil
	case "on":
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}

func knownMethod(m checkout.Method) bool {
	for _, known := range checkout.Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Reset leaves the success step; the front-end then navigates to the shop.
func (h *CheckoutHandlers) Reset(c *gin.Context) {
	f := h.flow(c)
	if err := f.Reset(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": f.Snapshot(), "next": "shop"})
}

func (h *CheckoutHandlers) fail(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please complete the required fields", "fields": verr.Fields})
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "This checkout step is not available", "step": h.flow(c).Step()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty"})
	default:
		h.logger.Error("checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit your order"})
	}
}
