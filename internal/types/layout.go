package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGeneration is returned when no record layout is known for a
// firmware generation.
var ErrUnknownGeneration = errors.New("unknown firmware generation")

// Variant is the CSE firmware family.
type Variant int

const (
	VariantCSME Variant = iota + 1
	VariantCSTXE
	VariantCSSPS
)

// String returns the conventional family name
func (v Variant) String() string {
	switch v {
	case VariantCSME:
		return "CSME"
	case VariantCSTXE:
		return "CSTXE"
	case VariantCSSPS:
		return "CSSPS"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant converts a family name into a Variant.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CSME", "ME":
		return VariantCSME, nil
	case "CSTXE", "TXE":
		return VariantCSTXE, nil
	case "CSSPS", "SPS":
		return VariantCSSPS, nil
	default:
		return 0, fmt.Errorf("%w: variant %q", ErrUnknownGeneration, name)
	}
}

// Generation identifies the firmware that wrote the partition.
type Generation struct {
	Variant Variant
	Major   int
	Minor   int
}

// String returns "VARIANT major.minor"
func (g Generation) String() string {
	return fmt.Sprintf("%s %d.%d", g.Variant, g.Major, g.Minor)
}

// HomeLayout is the on-disk size of Home Directory records.
type HomeLayout int

const (
	HomeLayout0x18 HomeLayout = 0x18
	HomeLayout0x1C HomeLayout = 0x1C
)

// IntegrityLayout is the on-disk size of Integrity Records.
type IntegrityLayout int

const (
	IntegrityLayout0x28 IntegrityLayout = 0x28
	IntegrityLayout0x34 IntegrityLayout = 0x34
)

// ConfigLayout is the on-disk size of Configuration records.
type ConfigLayout int

const (
	ConfigLayout0xC  ConfigLayout = 0x0C
	ConfigLayout0x1C ConfigLayout = 0x1C
)

// Layout is the set of record layouts used by one partition. It is decided
// once from the Generation and threaded through every decoder.
type Layout struct {
	Home      HomeLayout
	Integrity IntegrityLayout
	Config    ConfigLayout

	// QuotaIntegrity reports whether Quota Storage carries an Integrity Record.
	QuotaIntegrity bool
}

// Size returns the record size in bytes.
func (l HomeLayout) Size() int { return int(l) }

// Size returns the record size in bytes.
func (l IntegrityLayout) Size() int { return int(l) }

// Size returns the record size in bytes.
func (l ConfigLayout) Size() int { return int(l) }

// String returns the record size in hex
func (l HomeLayout) String() string { return fmt.Sprintf("0x%X", int(l)) }

// String returns the record size in hex
func (l IntegrityLayout) String() string { return fmt.Sprintf("0x%X", int(l)) }

// String returns the record size in hex
func (l ConfigLayout) String() string { return fmt.Sprintf("0x%X", int(l)) }

// Layout returns the record layouts written by the generation.
func (g Generation) Layout() (Layout, error) {
	legacy := Layout{Home: HomeLayout0x18, Integrity: IntegrityLayout0x28, Config: ConfigLayout0x1C}
	sha := Layout{Home: HomeLayout0x1C, Integrity: IntegrityLayout0x34, Config: ConfigLayout0x1C, QuotaIntegrity: true}
	fileTable := Layout{Home: HomeLayout0x1C, Integrity: IntegrityLayout0x34, Config: ConfigLayout0xC, QuotaIntegrity: true}

	switch g.Variant {
	case VariantCSME:
		switch {
		case g.Major >= 13:
			return fileTable, nil
		case g.Major == 12:
			return sha, nil
		case g.Major == 11:
			return legacy, nil
		}
	case VariantCSTXE:
		if g.Major == 3 || g.Major == 4 {
			return legacy, nil
		}
	case VariantCSSPS:
		switch {
		case g.Major >= 6:
			return fileTable, nil
		case g.Major == 4 || g.Major == 5:
			return legacy, nil
		}
	}

	return Layout{}, fmt.Errorf("%w: %s", ErrUnknownGeneration, g)
}
