package arp

import "syscall"

func fetchTable() ([]Entry, error) {
	b, err := syscall.NetlinkRIB(syscall.RTM_GETNEIGH, syscall.AF_INET)
	if err != nil {
		return nil, err
	}
	return ParseNeighborMessages(b), nil
}
