package models

// Connection types understood by datasource definitions.
const (
	ConnectionTypeDriver       = "java.sql.Driver"
	ConnectionTypeDataSource   = "javax.sql.DataSource"
	ConnectionTypeXADataSource = "javax.sql.XADataSource"
)

// TransactionSupport is the transaction model requested by a datasource.
type TransactionSupport string

const (
	NoTransaction    TransactionSupport = "NO_TRANSACTION"
	LocalTransaction TransactionSupport = "LOCAL_TRANSACTION"
	XATransaction    TransactionSupport = "XA_TRANSACTION"
)

// DataSource is a JDBC datasource a configuration must provision.
type DataSource struct {
	ID                   string             `json:"id" yaml:"id"`
	JNDILocation         string             `json:"jndiLocation" yaml:"jndiLocation" validate:"required"`
	ConnectionType       string             `json:"connectionType" yaml:"connectionType" validate:"omitempty,oneof=java.sql.Driver javax.sql.DataSource javax.sql.XADataSource"`
	TransactionSupport   TransactionSupport `json:"transactionSupport" yaml:"transactionSupport" validate:"omitempty,oneof=NO_TRANSACTION LOCAL_TRANSACTION XA_TRANSACTION"`
	DriverClass          string             `json:"driverClass" yaml:"driverClass"`
	URL                  string             `json:"url" yaml:"url"`
	Username             string             `json:"username,omitempty" yaml:"username,omitempty"`
	Password             string             `json:"password,omitempty" yaml:"password,omitempty"`
	ConnectionProperties map[string]string  `json:"connectionProperties,omitempty" yaml:"connectionProperties,omitempty"`
}

// IsXA reports whether the datasource is configured through an XA datasource class.
func (d *DataSource) IsXA() bool {
	return d.ConnectionType == ConnectionTypeXADataSource
}

// RequiresTransactions reports whether a driver configured datasource asks for
// transaction emulation.
func (d *DataSource) RequiresTransactions() bool {
	return !d.IsXA() && d.TransactionSupport != "" && d.TransactionSupport != NoTransaction
}
