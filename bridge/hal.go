package bridge

type HAL interface {
	// ReadAt reads len(p) bytes of the signature row starting at off.
	//
	// It follows the io.ReaderAt contract.
	ReadAt(p []byte, off int64) (int, error)
	// Idle puts the bridge into idle state.
	Idle() error
	// Wake wakes the bridge up.
	Wake() error
}
