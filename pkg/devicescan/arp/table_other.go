//go:build !darwin && !linux

package arp

func fetchTable() ([]Entry, error) {
	return nil, ErrNotSupported
}
