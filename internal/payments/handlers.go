package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/access"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/internal/razorpay"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
	"github.com/aldoetobex/legal-practice-backend/pkg/utils"
	"github.com/aldoetobex/legal-practice-backend/pkg/validation"
)

var (
	ErrCaseNotFound      = fiber.NewError(fiber.StatusNotFound, "Case not found")
	ErrPaymentNotFound   = fiber.NewError(fiber.StatusNotFound, "Payment not found")
	ErrInvalidStatus     = fiber.NewError(fiber.StatusBadRequest, "Invalid payment status")
	ErrInvalidSignature  = fiber.NewError(fiber.StatusBadRequest, "Invalid payment signature")
	ErrGatewayDisabled   = fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway is not configured")
	ErrGatewayFailed     = fiber.NewError(fiber.StatusBadGateway, "Payment gateway request failed")
	ErrAlreadyReconciled = fiber.NewError(fiber.StatusConflict, "Payment already verified with a different transaction")
)

// Gateway is the part of the Razorpay client the handlers use.
type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, in razorpay.OrderRequest) (razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// ===== DTOs =====

type CreatePaymentRequest struct {
	Amount        int64  `json:"amount" validate:"gt=0"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
	PaymentFor    string `json:"paymentFor" validate:"required,max=200"`
	CaseID        string `json:"caseId" validate:"required,uuid"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=upi card cash bank_transfer razorpay other"`
	TransactionID string `json:"transactionId" validate:"max=100"`
}

type CreateOrderRequest struct {
	Amount     int64  `json:"amount" validate:"gt=0"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
	PaymentFor string `json:"paymentFor" validate:"required,max=200"`
	CaseID     string `json:"caseId" validate:"required,uuid"`
}

// VerifyRequest carries the fields the Razorpay checkout hands back.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse is what the frontend needs to open the checkout.
type OrderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"keyId"`
	PaymentID string `json:"paymentId"`
}

type Handler struct {
	db      *gorm.DB
	gateway Gateway // nil when the gateway is disabled
}

func NewHandler(db *gorm.DB, gateway Gateway) *Handler {
	return &Handler{db: db, gateway: gateway}
}

func currencyOrDefault(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "INR"
	}
	return s
}

// managedCase loads a case and checks the caller may bill on it.
func (h *Handler) managedCase(db *gorm.DB, me access.Actor, rawID string) (models.Case, error) {
	var cs models.Case
	if err := db.First(&cs, "id = ?", uuid.MustParse(rawID)).Error; err != nil {
		if database.IsNotFound(err) {
			return cs, ErrCaseNotFound
		}
		return cs, err
	}
	return cs, access.CanManageCase(me, cs)
}

// ========== Manual payment (advocate) ==========

// Create Payment godoc
// @Summary      Record payment
// @Description  The case's advocate records an offline payment. It starts pending.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreatePaymentRequest  true  "Payment (amount in paise)"
// @Success      201  {object}  models.Envelope{data=models.Payment}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /payments [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreatePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.PaymentFor = strings.TrimSpace(in.PaymentFor)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	cs, err := h.managedCase(db, me, in.CaseID)
	if err != nil {
		return err
	}

	p := models.Payment{
		ID:            uuid.New(),
		Amount:        in.Amount,
		Currency:      currencyOrDefault(in.Currency),
		PaymentFor:    in.PaymentFor,
		CaseID:        cs.ID,
		ClientID:      cs.ClientID,
		ReceivedByID:  me.ID,
		PaymentMethod: models.PaymentMethod(in.PaymentMethod),
		Status:        models.PayPending,
		TransactionID: strings.TrimSpace(in.TransactionID),
	}
	if err := db.Create(&p).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Payment recorded successfully", p))
}

// ========== List ==========

// List Payments godoc
// @Summary      List payments
// @Description  Clients see what they paid, advocates what they received, juniors payments on assigned cases, admins everything
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "pending | completed | failed"
// @Param        caseId  query  string  false  "case id (uuid)"
// @Success      200  {object}  models.Envelope{data=[]models.Payment}
// @Router       /payments [get]
func (h *Handler) List(c *fiber.Ctx) error {
	me := auth.MustActor(c)

	q := h.db.WithContext(c.UserContext()).
		Scopes(access.Payments(me)).
		Preload("Case", models.CaseRefColumns).
		Preload("Client", models.UserRefColumns).
		Preload("ReceivedBy", models.UserRefColumns).
		Order("payments.created_at DESC")

	if s := c.Query("status"); s != "" {
		st, ok := models.ParsePayStatus(s)
		if !ok {
			return ErrInvalidStatus
		}
		q = q.Where("payments.status = ?", st)
	}
	caseID, ok, err := utils.QueryUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	if ok {
		q = q.Where("payments.case_id = ?", caseID)
	}

	var out []models.Payment
	if err := q.Find(&out).Error; err != nil {
		return err
	}
	return c.JSON(models.List(out))
}

// ========== Status ==========

// Update Payment Status godoc
// @Summary      Update payment status
// @Description  Only the receiving advocate may change a payment's status. Completion stamps paidAt.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        paymentId  path  string               true  "payment id (uuid)"
// @Param        payload    body  UpdateStatusRequest  true  "pending | completed | failed"
// @Success      200  {object}  models.Envelope{data=models.Payment}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /payments/{paymentId}/status [patch]
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	paymentID, err := utils.ParamUUID(c, "paymentId", "payment")
	if err != nil {
		return err
	}
	var in UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	status, ok := models.ParsePayStatus(strings.TrimSpace(in.Status))
	if !ok {
		return ErrInvalidStatus
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var p models.Payment
	if err := db.First(&p, "id = ?", paymentID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrPaymentNotFound
		}
		return err
	}
	if err := access.CanTransitionPayment(me, p); err != nil {
		return err
	}

	p.Transition(status, time.Now())
	if err := db.Model(&p).Select("status", "paid_at", "updated_at").Updates(&p).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("Payment status updated", p))
}

// ========== Razorpay ==========

// Create Order godoc
// @Summary      Create gateway order
// @Description  The case's advocate opens a Razorpay order; a pending payment tracks it
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateOrderRequest  true  "Order (amount in paise)"
// @Success      201  {object}  models.Envelope{order=OrderResponse,data=models.Payment}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      502  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /payments/create-order [post]
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	if h.gateway == nil {
		return ErrGatewayDisabled
	}
	var in CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.PaymentFor = strings.TrimSpace(in.PaymentFor)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	cs, err := h.managedCase(db, me, in.CaseID)
	if err != nil {
		return err
	}

	p := models.Payment{
		ID:            uuid.New(),
		Amount:        in.Amount,
		Currency:      currencyOrDefault(in.Currency),
		PaymentFor:    in.PaymentFor,
		CaseID:        cs.ID,
		ClientID:      cs.ClientID,
		ReceivedByID:  me.ID,
		PaymentMethod: models.MethodRazorpay,
		Status:        models.PayPending,
	}

	order, err := h.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   p.Amount,
		Currency: p.Currency,
		Receipt:  "pay_" + strings.ReplaceAll(p.ID.String(), "-", "")[:20],
		Notes:    map[string]string{"caseNumber": cs.CaseNumber, "paymentId": p.ID.String()},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayFailed, err)
	}
	p.GatewayOrderID = &order.ID

	if err := db.Create(&p).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.Envelope{
		Success: true,
		Message: "Order created",
		Order: OrderResponse{
			ID:        order.ID,
			Amount:    order.Amount,
			Currency:  order.Currency,
			KeyID:     h.gateway.KeyID(),
			PaymentID: p.ID.String(),
		},
		Data: p,
	})
}

// Verify Payment godoc
// @Summary      Verify gateway payment
// @Description  Checks the checkout signature (HMAC-SHA256 over orderId|paymentId) and completes the payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  VerifyRequest  true  "Checkout result"
// @Success      200  {object}  models.Envelope{data=models.Payment}
// @Failure      400  {object}  models.ErrorResponse  "bad signature"
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /payments/verify [post]
func (h *Handler) Verify(c *fiber.Ctx) error {
	if h.gateway == nil {
		return ErrGatewayDisabled
	}
	var in VerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var p models.Payment
	if err := db.First(&p, "gateway_order_id = ?", in.OrderID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrPaymentNotFound
		}
		return err
	}
	if err := access.CanTransitionPayment(me, p); err != nil {
		return err
	}
	if !h.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return ErrInvalidSignature
	}

	if p.Status == models.PayCompleted {
		if p.TransactionID == in.PaymentID {
			return c.JSON(models.OK("Payment already verified", p))
		}
		return ErrAlreadyReconciled
	}

	p.Transition(models.PayCompleted, time.Now())
	p.TransactionID = in.PaymentID
	if err := db.Model(&p).Select("status", "paid_at", "transaction_id", "updated_at").Updates(&p).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("Payment verified successfully", p))
}
