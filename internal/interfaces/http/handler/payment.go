package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	paymentapp "github.com/scentshop/backend/internal/application/payment"
	"github.com/scentshop/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles payment gateway callback endpoints and the
// payment audit log. The IPN and return endpoints are called by the
// gateway or a redirected browser and carry no bearer token.
type PaymentHandler struct {
	BaseHandler
	callbackService *paymentapp.CallbackService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(callbackService *paymentapp.CallbackService) *PaymentHandler {
	return &PaymentHandler{callbackService: callbackService}
}

// VNPayIPN handles GET/POST /api/v1/payment/vnpay/ipn.
// The response is always HTTP 200 with a gateway acknowledgement body;
// anything else makes the gateway redeliver forever.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	ack := h.callbackService.ProcessIPN(c.Request.Context(), "vnpay", callbackParams(c))
	c.JSON(http.StatusOK, ack)
}

// VNPayReturn handles GET /api/v1/payment/vnpay/return.
// It reports the outcome to the browser; the authoritative state change
// happens through the IPN.
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	result, err := h.callbackService.ProcessReturn("vnpay", callbackParams(c))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "callback verification failed")
		return
	}
	h.Success(c, result)
}

// History handles GET /api/v1/payments/history. It returns the
// authenticated user's own payment records, newest first.
func (h *PaymentHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	records, total, err := h.callbackService.History(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, pageOrDefault(req.Page), sizeOrDefault(req.PageSize))
}

// ListRecords handles GET /api/v1/admin/payments
func (h *PaymentHandler) ListRecords(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	records, total, err := h.callbackService.ListRecords(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, pageOrDefault(req.Page), sizeOrDefault(req.PageSize))
}

// OrderRecords handles GET /api/v1/admin/orders/:id/payments
func (h *PaymentHandler) OrderRecords(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	records, err := h.callbackService.OrderRecords(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// callbackParams merges query and form parameters. The gateway sends the
// IPN as a GET query string but some configurations POST a form body.
func callbackParams(c *gin.Context) url.Values {
	params := url.Values{}
	for key, values := range c.Request.URL.Query() {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil {
			for key, values := range c.Request.PostForm {
				for _, v := range values {
					params.Add(key, v)
				}
			}
		}
	}
	return params
}
