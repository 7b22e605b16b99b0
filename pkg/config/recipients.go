package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"gopkg.in/yaml.v3"
)

// RecipientEntry is a recipient as written in config, before address
// validation.
type RecipientEntry struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

type recipientsFile struct {
	Recipients []RecipientEntry `yaml:"recipients"`
}

// LoadRecipientsFile reads recipients from a YAML or JSON document, either
// a bare list or an object with a "recipients" list.
func LoadRecipientsFile(path string) ([]RecipientEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipients file: %w", err)
	}
	return ParseRecipients(data)
}

func ParseRecipients(data []byte) ([]RecipientEntry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse recipients: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("recipients document is empty")
	}

	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		var list []RecipientEntry
		if err := node.Content[0].Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode recipients: %w", err)
		}
		return list, nil
	case yaml.MappingNode:
		var file recipientsFile
		if err := node.Content[0].Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode recipients: %w", err)
		}
		return file.Recipients, nil
	default:
		return nil, fmt.Errorf("recipients must be a list or an object with a recipients list")
	}
}

// ParseRecipientFlag parses "name=0xaddress".
func ParseRecipientFlag(value string) (RecipientEntry, error) {
	name, addr, ok := strings.Cut(value, "=")
	name, addr = strings.TrimSpace(name), strings.TrimSpace(addr)
	if !ok || name == "" || addr == "" {
		return RecipientEntry{}, fmt.Errorf("recipient %q must have the form name=0xaddress", value)
	}
	return RecipientEntry{Name: name, Address: addr}, nil
}

type legacyRecipient struct {
	env  string
	name string
}

var legacyRecipients = map[voucher.Kind][]legacyRecipient{
	voucher.KindTrip: {
		{env: EnvDriverOneAddress, name: "driver1"},
		{env: EnvDriverTwoAddress, name: "driver2"},
	},
	voucher.KindPayroll: {
		{env: EnvEmployeeOneAddress, name: "employee1"},
		{env: EnvEmployeeTwoAddress, name: "employee2"},
	},
}

// LegacyRecipients reads the fixed per-recipient env vars for kind. If none
// of them is set it returns nothing. Once one is set every var of the kind is
// required.
func LegacyRecipients(kind voucher.Kind, lookup func(string) (string, bool)) ([]RecipientEntry, error) {
	var out []RecipientEntry
	var missing []string
	for _, lr := range legacyRecipients[kind] {
		addr, _ := lookup(lr.env)
		addr = strings.TrimSpace(addr)
		if addr == "" {
			missing = append(missing, lr.env)
			continue
		}
		out = append(out, RecipientEntry{Name: lr.name, Address: addr})
	}
	if len(out) == 0 {
		return nil, nil
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variable(s) %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// ResolveRecipients combines the file and flag sources in that order. When
// neither yields anything the legacy env vars are used.
func ResolveRecipients(kind voucher.Kind, file string, flags []string, lookup func(string) (string, bool)) ([]RecipientEntry, error) {
	var out []RecipientEntry
	if file != "" {
		fromFile, err := LoadRecipientsFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}
	for _, f := range flags {
		entry, err := ParseRecipientFlag(f)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if len(out) == 0 {
		return LegacyRecipients(kind, lookup)
	}
	return out, nil
}
