package festival

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/skytint/internal/colour"
)

// ErrInvalidTable is returned when a festival table fails validation.
var ErrInvalidTable = errors.New("invalid festival table")

//go:embed data/festivals.yaml
var defaultTableYAML []byte

var (
	validate     = validator.New(validator.WithRequiredStructEnabled())
	defaultTable = sync.OnceValues(func() (Table, error) {
		return ParseTable(defaultTableYAML, FormatYAML)
	})
)

// Format is a festival table encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks a Format from a file extension. Unknown extensions are
// read as YAML, which also accepts JSON documents.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DefaultTable returns the festival table shipped with the binary.
func DefaultTable() (Table, error) {
	return defaultTable()
}

// LoadTable reads and validates a festival table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user-specified festival table, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read festival table: %w", err)
	}

	table, err := ParseTable(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseTable decodes and validates a festival table.
func ParseTable(data []byte, format Format) (Table, error) {
	var table Table

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&table); err != nil {
			return nil, fmt.Errorf("failed to parse festival JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse festival YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported festival table format: %s", format)
	}

	if table == nil {
		table = Table{}
	}

	if err := Validate(table); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks month keys and every record in table.
func Validate(table Table) error {
	var errs []error

	for month, list := range table {
		if !isMonthKey(month) {
			errs = append(errs, fmt.Errorf("unknown month %q", month))
			continue
		}
		for i, f := range list {
			if err := validateFestival(f); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d] %q: %w", month, i, f.Name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	return nil
}

func validateFestival(f Festival) error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return errors.New(strings.Join(fields, ", "))
		}
		return err
	}

	if !f.Color.IsEmpty() && f.Color.Kind == colour.KindInvalid {
		return fmt.Errorf("color %q is neither a hex colour nor a gradient", f.Color.Raw)
	}
	return nil
}

func isMonthKey(key string) bool {
	for m := time.January; m <= time.December; m++ {
		if key == MonthKey(m) {
			return true
		}
	}
	return false
}
