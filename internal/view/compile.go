// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"strconv"
	"strings"

	"fdsgo/internal/fdserr"
	"fdsgo/internal/iedict"
	"fdsgo/internal/ipfix"
)

// Definition is the compiled schema: an ordered key tuple, an
// ordered value tuple, and the derived widths/flags downstream packages
// need. It is built once from CLI arguments and is immutable for the life
// of the run.
type Definition struct {
	Keys   []Field
	Values []Field

	KeysSize     int
	ValuesSize   int
	Bidirectional bool
	BiflowEnabled bool
}

// SlotSize is the total width (key tuple + value tuple) of one aggregation
// slot.
func (d *Definition) SlotSize() int { return d.KeysSize + d.ValuesSize }

// FieldByName finds a compiled field (key or value) by its display name,
// used by the sort-spec and output-filter resolvers.
func (d *Definition) FieldByName(name string) (*Field, bool) {
	for i := range d.Keys {
		if d.Keys[i].Name == name {
			return &d.Keys[i], true
		}
	}
	for i := range d.Values {
		if d.Values[i].Name == name {
			return &d.Values[i], true
		}
	}
	return nil, false
}

// Compile parses the "-a keys" and "-s values" strings into a Definition.
// dict resolves any token that is not one of the built-in
// src/dst/proto/port/subnet shorthands.
func Compile(keysStr, valuesStr string, dict iedict.IEDictionary) (*Definition, error) {
	def := &Definition{}

	keyOffset := 0
	for _, tok := range splitTokens(keysStr) {
		f, err := compileKeyToken(tok, dict)
		if err != nil {
			return nil, err
		}
		f.Offset = keyOffset
		f.AbsOffset = keyOffset
		keyOffset += f.Size
		def.Keys = append(def.Keys, *f)
	}
	def.KeysSize = keyOffset

	valOffset := 0
	for _, tok := range splitTokens(valuesStr) {
		f, err := compileValueToken(tok, dict)
		if err != nil {
			return nil, err
		}
		f.Offset = valOffset
		f.AbsOffset = def.KeysSize + valOffset
		valOffset += f.Size
		def.Values = append(def.Values, *f)
	}
	def.ValuesSize = valOffset

	for _, f := range def.Keys {
		switch f.KeyKind {
		case KeyBidiIp, KeyBidiPort, KeyBidiIpv4Subnet, KeyBidiIpv6Subnet:
			def.Bidirectional = true
		}
	}
	def.BiflowEnabled = def.Bidirectional
	if !def.BiflowEnabled {
		for _, f := range def.Values {
			if f.DirFilter != DirAny {
				def.BiflowEnabled = true
				break
			}
		}
	}

	return def, nil
}

func splitTokens(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func splitPrefix(tok string) (name string, prefixLen int, hasPrefix bool) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		return tok[:i], parseIntOrNeg1(tok[i+1:]), true
	}
	return tok, 0, false
}

func parseIntOrNeg1(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func compileKeyToken(tok string, dict iedict.IEDictionary) (*Field, error) {
	name, prefix, hasPrefix := splitPrefix(tok)

	switch name {
	case "srcip":
		return bidiIpField("srcip", KeySourceIp, dict, "sourceIPv4Address", "sourceIPv6Address", "", "")
	case "dstip":
		return bidiIpField("dstip", KeyDestinationIp, dict, "destinationIPv4Address", "destinationIPv6Address", "", "")
	case "ip":
		return bidiIpField("ip", KeyBidiIp, dict, "sourceIPv4Address", "sourceIPv6Address", "destinationIPv4Address", "destinationIPv6Address")
	case "srcport":
		return verbatimField(name, dict, "sourceTransportPort")
	case "dstport":
		return verbatimField(name, dict, "destinationTransportPort")
	case "port":
		return bidiPortField()
	case "proto":
		return verbatimField(name, dict, "protocolIdentifier")
	case "dir":
		return &Field{Name: name, DataType: ipfix.U8, Size: 1, IsKey: true, KeyKind: KeyBiflowDirectionTag}, nil
	case "srcipv4":
		return subnetField(name, KeyIpv4Subnet, dict, "sourceIPv4Address", prefix, hasPrefix, 32)
	case "dstipv4":
		return subnetField(name, KeyIpv4Subnet, dict, "destinationIPv4Address", prefix, hasPrefix, 32)
	case "srcipv6":
		return subnetField(name, KeyIpv6Subnet, dict, "sourceIPv6Address", prefix, hasPrefix, 128)
	case "dstipv6":
		return subnetField(name, KeyIpv6Subnet, dict, "destinationIPv6Address", prefix, hasPrefix, 128)
	case "ipv4":
		return bidiSubnetField(name, KeyBidiIpv4Subnet, dict, "sourceIPv4Address", "destinationIPv4Address", prefix, hasPrefix, 32)
	case "ipv6":
		return bidiSubnetField(name, KeyBidiIpv6Subnet, dict, "sourceIPv6Address", "destinationIPv6Address", prefix, hasPrefix, 128)
	default:
		el, ok := dict.FindByName(name)
		if !ok {
			return nil, fdserr.Config("unknown key token %q", tok)
		}
		if hasPrefix {
			var kind KeyKind
			var maxPrefix int
			switch el.Type {
			case ipfix.IPv4:
				kind, maxPrefix = KeyIpv4Subnet, 32
			case ipfix.IPv6:
				kind, maxPrefix = KeyIpv6Subnet, 128
			default:
				return nil, fdserr.Config("%q is not an IP element, cannot take a /%d prefix", name, prefix)
			}
			if err := validatePrefix(prefix, maxPrefix); err != nil {
				return nil, err
			}
			return &Field{
				Name: tok, DataType: el.Type, Size: el.Type.Size(), IsKey: true,
				KeyKind: kind, PrefixLen: prefix,
				FwdV4: ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
			}, nil
		}
		return &Field{
			Name: name, DataType: el.Type, Size: el.Type.Size(), IsKey: true,
			KeyKind: KeyVerbatim,
			FwdV4:   ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
		}, nil
	}
}

func validatePrefix(prefixLen, maxBits int) error {
	if prefixLen < 1 || prefixLen > maxBits {
		return fdserr.Config("invalid prefix length /%d (must be 1..%d)", prefixLen, maxBits)
	}
	return nil
}

func verbatimField(name string, dict iedict.IEDictionary, ieName string) (*Field, error) {
	el, ok := dict.FindByName(ieName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", ieName)
	}
	return &Field{
		Name: name, DataType: el.Type, Size: el.Type.Size(), IsKey: true,
		KeyKind: KeyVerbatim,
		FwdV4:   ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
	}, nil
}

func bidiIpField(name string, kind KeyKind, dict iedict.IEDictionary, srcV4, srcV6, dstV4, dstV6 string) (*Field, error) {
	f := &Field{Name: name, DataType: ipfix.IP, Size: ipfix.IP.Size(), IsKey: true, KeyKind: kind}
	if el, ok := dict.FindByName(srcV4); ok {
		f.FwdV4 = ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true}
	}
	if srcV6 != "" {
		if el, ok := dict.FindByName(srcV6); ok {
			f.FwdV6 = ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true}
		}
	}
	if dstV4 != "" {
		if el, ok := dict.FindByName(dstV4); ok {
			f.RevV4 = ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true}
		}
	}
	if dstV6 != "" {
		if el, ok := dict.FindByName(dstV6); ok {
			f.RevV6 = ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true}
		}
	}
	return f, nil
}

func bidiPortField() (*Field, error) {
	return &Field{
		Name: "port", DataType: ipfix.U16, Size: 2, IsKey: true, KeyKind: KeyBidiPort,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 7, Valid: true},  // sourceTransportPort
		RevV4: ipfix.WireRef{Enterprise: 0, ID: 11, Valid: true}, // destinationTransportPort
	}, nil
}

func subnetField(name string, kind KeyKind, dict iedict.IEDictionary, ieName string, prefix int, hasPrefix bool, maxBits int) (*Field, error) {
	el, ok := dict.FindByName(ieName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", ieName)
	}
	if !hasPrefix {
		prefix = maxBits
	}
	if err := validatePrefix(prefix, maxBits); err != nil {
		return nil, err
	}
	return &Field{
		Name: name, DataType: el.Type, Size: el.Type.Size(), IsKey: true,
		KeyKind: kind, PrefixLen: prefix,
		FwdV4: ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
	}, nil
}

func bidiSubnetField(name string, kind KeyKind, dict iedict.IEDictionary, srcName, dstName string, prefix int, hasPrefix bool, maxBits int) (*Field, error) {
	srcEl, ok := dict.FindByName(srcName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", srcName)
	}
	dstEl, ok := dict.FindByName(dstName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", dstName)
	}
	if !hasPrefix {
		prefix = maxBits
	}
	if err := validatePrefix(prefix, maxBits); err != nil {
		return nil, err
	}
	return &Field{
		Name: name, DataType: srcEl.Type, Size: srcEl.Type.Size(), IsKey: true,
		KeyKind: kind, PrefixLen: prefix,
		FwdV4: ipfix.WireRef{Enterprise: srcEl.Enterprise, ID: srcEl.ID, Valid: true},
		RevV4: ipfix.WireRef{Enterprise: dstEl.Enterprise, ID: dstEl.ID, Valid: true},
	}, nil
}

func compileValueToken(tok string, dict iedict.IEDictionary) (*Field, error) {
	switch tok {
	case "packets":
		return sumField(tok, dict, "packetDeltaCount", DirAny)
	case "bytes":
		return sumField(tok, dict, "octetDeltaCount", DirAny)
	case "flows":
		return countField(tok, DirAny), nil
	case "inpackets":
		return sumField(tok, dict, "packetDeltaCount", DirFwdOnly)
	case "inbytes":
		return sumField(tok, dict, "octetDeltaCount", DirFwdOnly)
	case "inflows":
		return countField(tok, DirFwdOnly), nil
	case "outpackets":
		return sumField(tok, dict, "packetDeltaCount", DirRevOnly)
	case "outbytes":
		return sumField(tok, dict, "octetDeltaCount", DirRevOnly)
	case "outflows":
		return countField(tok, DirRevOnly), nil
	default:
		switch {
		case strings.HasPrefix(tok, "min"):
			return reducerField(tok, tok[3:], ValueMin, dict)
		case strings.HasPrefix(tok, "max"):
			return reducerField(tok, tok[3:], ValueMax, dict)
		}
		return nil, fdserr.Config("unknown value token %q", tok)
	}
}

func sumField(name string, dict iedict.IEDictionary, ieName string, dir DirectionFilter) (*Field, error) {
	el, ok := dict.FindByName(ieName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", ieName)
	}
	if !isNumeric(el.Type) {
		return nil, fdserr.Config("%q is not a numeric element, cannot sum", ieName)
	}
	return &Field{
		Name: name, DataType: el.Type, Size: el.Type.Size(), ValueKind: ValueSum, DirFilter: dir,
		FwdV4: ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
	}, nil
}

func countField(name string, dir DirectionFilter) *Field {
	return &Field{Name: name, DataType: ipfix.U64, Size: 8, ValueKind: ValueCount, DirFilter: dir}
}

func reducerField(name, ieName string, kind ValueKind, dict iedict.IEDictionary) (*Field, error) {
	if ieName == "" {
		return nil, fdserr.Config("value token %q is missing its information element name", name)
	}
	el, ok := dict.FindByName(ieName)
	if !ok {
		return nil, fdserr.Config("information element %q not found in dictionary", ieName)
	}
	if !isNumeric(el.Type) {
		return nil, fdserr.Config("%q is not a numeric element, cannot min/max", ieName)
	}
	return &Field{
		Name: name, DataType: el.Type, Size: el.Type.Size(), ValueKind: kind, DirFilter: DirAny,
		FwdV4: ipfix.WireRef{Enterprise: el.Enterprise, ID: el.ID, Valid: true},
	}, nil
}

func isNumeric(t ipfix.DataType) bool {
	switch t {
	case ipfix.U8, ipfix.U16, ipfix.U32, ipfix.U64, ipfix.I8, ipfix.I16, ipfix.I32, ipfix.I64, ipfix.DateTimeMs:
		return true
	default:
		return false
	}
}
