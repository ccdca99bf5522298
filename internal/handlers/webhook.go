package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

// SMSStatusWebhook receives asynchronous delivery-status callbacks from
// the SMS provider (form-encoded, Twilio style) and updates the matching
// notification record by provider message SID. Always answers 200 so the
// provider does not retry storms against us; unknown SIDs are only logged.
func SMSStatusWebhook(ctx *gin.Context) {
	sid := ctx.PostForm("MessageSid")
	status := ctx.PostForm("MessageStatus")
	errorMessage := ctx.PostForm("ErrorMessage")

	if sid == "" || status == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "MessageSid and MessageStatus are required"})
		return
	}

	recordStatus, final := mapDeliveryStatus(status)

	if !final {
		// Intermediate statuses (queued, sending) don't change the record.
		ctx.Status(http.StatusOK)
		return
	}

	affected, err := recordStore.UpdateByExternalID(ctx.Request.Context(), sid, recordStatus, errorMessage)

	if err != nil {
		log.Printf("Failed to apply delivery status for SID %s: %v", sid, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery status"})
		return
	}

	if affected == 0 {
		log.Printf("Delivery status for unknown SID %s (%s)", sid, status)
	}

	ctx.Status(http.StatusOK)
}

func mapDeliveryStatus(providerStatus string) (string, bool) {
	switch providerStatus {
	case "delivered", "sent":
		return types.DeliverySent, true
	case "failed", "undelivered":
		return types.DeliveryFailed, true
	default:
		return "", false
	}
}
