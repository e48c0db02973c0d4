package types

import (
	"fmt"
	"strings"
)

// FileRole is the semantic role of a Low Level File index.
type FileRole int

const (
	RoleUnknown FileRole = iota
	RoleAntiReplay
	RoleSVNMigration
	RoleQuotaStorage
	RoleIntelConfiguration
	RoleOEMConfiguration
	RoleHomeDirectory
	RoleManifestBackup
	RoleUnparsed
)

// Fixed Low Level File indices
const (
	FileIndexAntiReplay0  uint16 = 2
	FileIndexAntiReplay1  uint16 = 3
	FileIndexSVNMigration uint16 = 4
	FileIndexQuota        uint16 = 5
	FileIndexIntelConfig  uint16 = 6
	FileIndexOEMConfig    uint16 = 7
	FileIndexHome         uint16 = 8
	FileIndexManifest     uint16 = 9
)

// RoleForIndex maps a Low Level File index to its role. Index 9 is only a
// Manifest Backup when its content carries a manifest tag, see
// IsManifestBackup.
func RoleForIndex(index uint16) FileRole {
	switch index {
	case 0, 1:
		return RoleUnknown
	case FileIndexAntiReplay0, FileIndexAntiReplay1:
		return RoleAntiReplay
	case FileIndexSVNMigration:
		return RoleSVNMigration
	case FileIndexQuota:
		return RoleQuotaStorage
	case FileIndexIntelConfig:
		return RoleIntelConfiguration
	case FileIndexOEMConfig:
		return RoleOEMConfiguration
	case FileIndexHome:
		return RoleHomeDirectory
	case FileIndexManifest:
		return RoleManifestBackup
	default:
		return RoleUnparsed
	}
}

// IsManifestBackup reports whether data starts with a CSE manifest header.
func IsManifestBackup(data []byte) bool {
	end := ManifestTagOffset + len(ManifestTag)
	if len(data) < end {
		return false
	}
	return string(data[ManifestTagOffset:end]) == string(ManifestTag)
}

// String returns a human readable name for the role
func (r FileRole) String() string {
	switch r {
	case RoleUnknown:
		return "Unknown"
	case RoleAntiReplay:
		return "Anti-Replay"
	case RoleSVNMigration:
		return "SVN Migration"
	case RoleQuotaStorage:
		return "Quota Storage"
	case RoleIntelConfiguration:
		return "Intel Configuration"
	case RoleOEMConfiguration:
		return "OEM Configuration"
	case RoleHomeDirectory:
		return "Home Directory"
	case RoleManifestBackup:
		return "Manifest Backup"
	case RoleUnparsed:
		return "Unparsed"
	default:
		return fmt.Sprintf("FileRole(%d)", int(r))
	}
}

// Slug returns the role name in a form usable inside file names.
func (r FileRole) Slug() string {
	return strings.ToLower(strings.ReplaceAll(r.String(), " ", "-"))
}

// CarriesIntegrity reports whether files of this role end with an Integrity
// Record under the given layout.
func (r FileRole) CarriesIntegrity(layout Layout) bool {
	switch r {
	case RoleAntiReplay, RoleSVNMigration:
		return true
	case RoleQuotaStorage:
		return layout.QuotaIntegrity
	default:
		return false
	}
}
