// Package protocol implements the framed serial link between the timer
// firmware and the host tooling. Frames carry VLQ encoded messages: clock
// register snapshots from the firmware and capture requests from the host.
package protocol

// Version is the wire protocol revision reported by the firmware.
const Version = "1"

// Frame layout: len, seq, payload..., crc16 hi, crc16 lo, sync
const (
	MessageMax         = 512 // Output scratch size; holds several frames
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F
)

// nextSeq advances a sequence number inside the 0x10-0x1F window.
func nextSeq(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
