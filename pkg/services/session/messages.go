package session

import "github.com/eid-foundation/bankid-session/pkg/services"

// hintMessages maps collect hint codes to the texts shown to the end user.
var hintMessages = map[string]string{
	"outstandingTransaction": "Start your BankID app.",
	"noClient":               "Start your BankID app.",
	"started":                "Searching for BankID, it may take a little while. If a few seconds have passed and still no BankID has been found, you probably don't have a BankID which can be used for this identification on this device.",
	"userSign":               "Enter your security code in the BankID app and select Identify or Sign.",
	"expiredTransaction":     "The BankID app is not responding. Please check that it's started and that you have internet access. Then try again.",
	"certificateErr":         "The BankID you are trying to use is blocked or too old. Please use another BankID or get a new one from your bank.",
	"userCancel":             "Action cancelled.",
	"cancelled":              "Action cancelled. Please try again.",
	"startFailed":            "Failed to scan the QR code. Start the BankID app and scan the QR code. If you don't have the BankID app, you need to install it and get a BankID from your bank.",
}

const (
	completeMessage = "Identification successful."
	fallbackMessage = "Unknown error. Please try again."
)

// MessageFor returns the human-readable message for a status/hint combination.
func MessageFor(status services.OrderStatus, hintCode string) string {
	if status == services.StatusComplete {
		return completeMessage
	}
	if message, ok := hintMessages[hintCode]; ok {
		return message
	}
	if status == services.StatusPending {
		return hintMessages["outstandingTransaction"]
	}
	return fallbackMessage
}
