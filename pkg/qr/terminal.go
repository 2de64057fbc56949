package qr

import (
	"io"

	"github.com/mdp/qrterminal/v3"
)

// RenderTerminal writes the QR payload of the frame as a scannable halfblock
// QR code, used by the interactive CLI flows.
func RenderTerminal(frame Frame, writer io.Writer) {
	qrterminal.GenerateHalfBlock(frame.Token, qrterminal.L, writer)
}
