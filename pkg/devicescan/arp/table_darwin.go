package arp

import (
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

func fetchTable() ([]Entry, error) {
	b, err := route.FetchRIB(unix.AF_INET, route.RIBType(unix.NET_RT_FLAGS), unix.RTF_LLINFO)
	if err != nil {
		return nil, err
	}
	return ParseRouteMessages(b), nil
}
