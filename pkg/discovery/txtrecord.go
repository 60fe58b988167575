package discovery

import (
	"fmt"
	"strings"

	"github.com/iyes-games/mpauth/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeAuthTXT creates TXT records for an Auth server.
func EncodeAuthTXT(info *AuthServerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyServerName] = info.ServerName
	txt[TXTKeyProtoVersion] = info.ProtoVersion.String()

	if info.Region != "" {
		txt[TXTKeyRegion] = info.Region
	}

	return txt
}

// DecodeAuthTXT parses TXT records of an Auth server.
func DecodeAuthTXT(txt TXTRecordMap) (*AuthServerInfo, error) {
	info := &AuthServerInfo{}

	var ok bool
	info.ServerName, ok = txt[TXTKeyServerName]
	if !ok || info.ServerName == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyServerName)
	}

	pv, ok := txt[TXTKeyProtoVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProtoVersion)
	}
	v, err := version.Parse(pv)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTXTRecord, TXTKeyProtoVersion, err)
	}
	info.ProtoVersion = v

	info.Region = txt[TXTKeyRegion]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: instance name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
