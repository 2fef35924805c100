package power

// Reader reports the instantaneous power draw of one device in watts.
type Reader interface {
	Name() string
	Watts() (float64, error)
}
