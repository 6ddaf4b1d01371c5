package property

import (
	"strings"

	"github.com/codehaus-cargo/cargo-sub009/models"
)

// SplitOnPipe parses "k1=v1|k2=v2" into a map.
func SplitOnPipe(s string) map[string]string {
	return splitOnDelimiter(s, '|')
}

// SplitOnSemicolon parses "k1=v1;k2=v2" into a map.
func SplitOnSemicolon(s string) map[string]string {
	return splitOnDelimiter(s, ';')
}

func splitOnDelimiter(s string, delimiter rune) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(s, string(delimiter)) {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		key, value, _ := strings.Cut(entry, "=")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

// JoinOnPipe renders properties back into the pipe separated form.
func JoinOnPipe(props map[string]string, keys ...string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := props[k]; ok {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "|")
}

// IDFromJNDI derives a filesystem friendly id from a JNDI name: the part
// after the last '/', '.' or ':'.
func IDFromJNDI(jndi string) string {
	idx := strings.LastIndexAny(jndi, "/.:")
	return jndi[idx+1:]
}

// ParseDataSource converts a pipe separated datasource definition.
func ParseDataSource(s string) *models.DataSource {
	props := SplitOnPipe(s)

	ds := &models.DataSource{
		JNDILocation: props[DataSourceJNDILocation],
		DriverClass:  props[DataSourceDriverClass],
		URL:          props[DataSourceURL],
		Username:     props[DataSourceUsername],
		Password:     props[DataSourcePassword],
		ID:           props[DataSourceID],
	}

	connectionType := props[DataSourceConnectionType]
	if connectionType == models.ConnectionTypeXADataSource {
		ds.ConnectionType = connectionType
	} else {
		ds.ConnectionType = models.ConnectionTypeDriver
	}

	switch models.TransactionSupport(props[DataSourceTransactionSupport]) {
	case models.XATransaction:
		ds.TransactionSupport = models.XATransaction
	case models.LocalTransaction:
		ds.TransactionSupport = models.LocalTransaction
	default:
		ds.TransactionSupport = models.NoTransaction
	}
	if ds.IsXA() {
		ds.TransactionSupport = models.XATransaction
	}

	if raw := props[DataSourceConnectionProperties]; strings.TrimSpace(raw) != "" {
		ds.ConnectionProperties = SplitOnSemicolon(raw)
		if user, ok := ds.ConnectionProperties["user"]; ok {
			ds.Username = user
		}
		if password, ok := ds.ConnectionProperties["password"]; ok {
			ds.Password = password
		}
	}

	if ds.ID == "" && ds.JNDILocation != "" {
		ds.ID = IDFromJNDI(ds.JNDILocation)
	}
	return ds
}

// ParseResource converts a pipe separated resource definition.
func ParseResource(s string) *models.Resource {
	props := SplitOnPipe(s)

	r := &models.Resource{
		Name:      props[ResourceName],
		Type:      props[ResourceType],
		ClassName: props[ResourceClass],
		ID:        props[ResourceID],
	}
	if raw := props[ResourceParameters]; strings.TrimSpace(raw) != "" {
		r.Parameters = SplitOnSemicolon(raw)
	}
	if r.ID == "" && r.Name != "" {
		r.ID = IDFromJNDI(r.Name)
	}
	return r
}
