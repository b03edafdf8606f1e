package device

import "encoding/hex"

// identity is assigned at most once. owned marks a value derived by the
// device itself rather than handed over by the caller.
type identity struct {
	value string
	set   bool
	owned bool
}

// SetUniqueID derives the identity from b, two lowercase hex characters per byte.
// It fails without touching the device when an identity is already assigned or b is empty.
func (d *Device) SetUniqueID(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.id.set {
		return ErrUniqueIDAlreadySet
	}
	if len(b) == 0 {
		return ErrEmptyUniqueID
	}
	d.id = identity{value: hex.EncodeToString(b), set: true, owned: true}
	return nil
}

// UniqueID returns the identity and whether one is assigned.
func (d *Device) UniqueID() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id.value, d.id.set
}

// UniqueIDDerived reports whether the identity was derived from bytes.
func (d *Device) UniqueIDDerived() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id.owned
}
