package importer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	nameHeaders     = []string{"name", "full name", "client name", "client full name"}
	forenameHeaders = []string{"client forename", "forename", "first name", "firstname", "given name"}
	surnameHeaders  = []string{"client surname", "surname", "last name", "lastname", "family name"}
	emailHeaders    = []string{"email", "e-mail", "email address", "client email"}
)

// matcher reports whether a canonical header plays a role
type matcher func(canonical string) bool

func exactly(options ...string) matcher {
	set := make(map[string]bool, len(options))
	for _, o := range options {
		set[o] = true
	}
	return func(h string) bool { return set[h] }
}

func containing(sub string, unless ...string) matcher {
	return func(h string) bool {
		if !strings.Contains(h, sub) {
			return false
		}
		for _, u := range unless {
			if strings.Contains(h, u) {
				return false
			}
		}
		return true
	}
}

var (
	nameMatchers     = []matcher{exactly(nameHeaders...)}
	forenameMatchers = []matcher{exactly(forenameHeaders...), containing("forename"), containing("first name")}
	surnameMatchers  = []matcher{exactly(surnameHeaders...), containing("surname"), containing("last name")}
	emailMatchers    = []matcher{exactly(emailHeaders...), containing("email")}
	fallbackName     = containing("name", "email")
)

// canonicalHeader folds a header for matching: NFKC, no BOM, lower case,
// underscores as spaces and single spacing.
func canonicalHeader(h string) string {
	h = norm.NFKC.String(h)
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// Columns assigns spreadsheet headers to client fields.
// Empty strings mean the role is absent.
type Columns struct {
	Name          string
	Forename      string
	Surname       string
	Email         string
	Reference     string
	NameFallbacks []string
}

// HasName reports whether any header can supply a client name
func (c Columns) HasName() bool {
	return c.Name != "" || c.Forename != "" || c.Surname != "" || len(c.NameFallbacks) > 0
}

// HasEmail reports whether a header can supply an email address
func (c Columns) HasEmail() bool {
	return c.Email != ""
}

// consumed reports whether header feeds a dedicated field rather than extra data
func (c Columns) consumed(header string) bool {
	switch header {
	case c.Name, c.Forename, c.Surname, c.Email, c.Reference:
		return header != ""
	}
	return false
}

// ResolveColumns assigns roles to headers. Each role is resolved by trying its
// matchers in priority order over the headers in file order; a header takes at
// most one role. referenceField is matched case-sensitively first, then
// ignoring case.
func ResolveColumns(headers []string, referenceField string) Columns {
	canonical := make([]string, len(headers))
	for i, h := range headers {
		canonical[i] = canonicalHeader(h)
	}

	taken := make(map[string]bool)
	pick := func(matchers []matcher) string {
		for _, m := range matchers {
			for i, h := range headers {
				if !taken[h] && m(canonical[i]) {
					taken[h] = true
					return h
				}
			}
		}
		return ""
	}

	var cols Columns
	cols.Reference = resolveReference(headers, referenceField)
	if cols.Reference != "" {
		taken[cols.Reference] = true
	}
	cols.Email = pick(emailMatchers)
	cols.Name = pick(nameMatchers)
	cols.Forename = pick(forenameMatchers)
	cols.Surname = pick(surnameMatchers)

	for i, h := range headers {
		if h == cols.Name || h == cols.Email || h == cols.Reference {
			continue
		}
		if fallbackName(canonical[i]) {
			cols.NameFallbacks = append(cols.NameFallbacks, h)
		}
	}

	return cols
}

func resolveReference(headers []string, referenceField string) string {
	field := strings.TrimSpace(referenceField)
	if field == "" {
		return ""
	}
	for _, h := range headers {
		if strings.TrimSpace(h) == field {
			return h
		}
	}
	want := canonicalHeader(field)
	for _, h := range headers {
		if canonicalHeader(h) == want {
			return h
		}
	}
	return ""
}

// ValidateHeaders reports whether a header row looks like a client list:
// at least one name-like and one email-like column.
func ValidateHeaders(headers []string) bool {
	cols := ResolveColumns(headers, "")
	return cols.HasName() && cols.HasEmail()
}
