package core

// Field layout of one stream beat. Fixed by the wire format.
const (
	AmountWidth = 40
	DestWidth   = 16
	RecordWidth = 64

	AmountMask = (uint64(1) << AmountWidth) - 1
	DestShift  = AmountWidth
	DestMask   = uint64(1)<<DestWidth - 1
)

// Record is one 64-bit beat of the transaction stream. A logical
// transaction may span several records; Last tags the final record of its
// group.
type Record struct {
	Payload uint64
	Last    bool
}

// Amount returns the 40-bit unsigned magnitude field.
func (r Record) Amount() uint64 {
	return r.Payload & AmountMask
}

// Destination returns the 16-bit destination identifier. Carried through
// the pipeline but not evaluated; reserved for future use.
func (r Record) Destination() uint16 {
	return uint16((r.Payload >> DestShift) & DestMask)
}

// MakePayload packs an amount and destination id into the wire layout.
func MakePayload(amount uint64, dest uint16) uint64 {
	return uint64(dest)<<DestShift | amount&AmountMask
}
