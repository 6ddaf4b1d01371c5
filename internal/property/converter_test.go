package property

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codehaus-cargo/cargo-sub009/models"
)

func TestParseDataSource_Driver(t *testing.T) {
	ds := ParseDataSource("cargo.datasource.url=jdbc:h2:mem:db|cargo.datasource.driver=org.h2.Driver|" +
		"cargo.datasource.jndi=jdbc/CrossCastDS|cargo.datasource.transactionsupport=LOCAL_TRANSACTION|" +
		"cargo.datasource.properties=user=sa;password=secret")

	assert.Equal(t, "jdbc/CrossCastDS", ds.JNDILocation)
	assert.Equal(t, "CrossCastDS", ds.ID)
	assert.Equal(t, models.ConnectionTypeDriver, ds.ConnectionType)
	assert.Equal(t, models.LocalTransaction, ds.TransactionSupport)
	assert.Equal(t, "sa", ds.Username)
	assert.Equal(t, "secret", ds.Password)
	assert.Equal(t, map[string]string{"user": "sa", "password": "secret"}, ds.ConnectionProperties)
}

func TestParseDataSource_XAImpliesXATransactions(t *testing.T) {
	ds := ParseDataSource("cargo.datasource.type=javax.sql.XADataSource|cargo.datasource.jndi=java:jdbc.XADS|" +
		"cargo.datasource.id=xa")

	assert.True(t, ds.IsXA())
	assert.Equal(t, models.XATransaction, ds.TransactionSupport)
	assert.Equal(t, "xa", ds.ID)
}

func TestParseDataSource_UnknownTypeFallsBackToDriver(t *testing.T) {
	ds := ParseDataSource("cargo.datasource.type=javax.sql.DataSource|cargo.datasource.jndi=jdbc/plain")

	assert.Equal(t, models.ConnectionTypeDriver, ds.ConnectionType)
	assert.Equal(t, models.NoTransaction, ds.TransactionSupport)
	assert.Nil(t, ds.ConnectionProperties)
}

func TestParseResource(t *testing.T) {
	r := ParseResource("cargo.resource.name=mail/Session|cargo.resource.type=javax.mail.Session|" +
		"cargo.resource.parameters=mail.smtp.host=localhost;mail.smtp.port=25")

	assert.Equal(t, "mail/Session", r.Name)
	assert.Equal(t, "Session", r.ID)
	assert.Equal(t, "javax.mail.Session", r.Type)
	assert.Equal(t, map[string]string{"mail.smtp.host": "localhost", "mail.smtp.port": "25"}, r.Parameters)
}

func TestIDFromJNDI(t *testing.T) {
	assert.Equal(t, "DefaultDS", IDFromJNDI("java:/DefaultDS"))
	assert.Equal(t, "DS", IDFromJNDI("jdbc.DS"))
	assert.Equal(t, "plain", IDFromJNDI("plain"))
}

func TestJoinOnPipe(t *testing.T) {
	props := map[string]string{ResourceName: "a", ResourceType: "b"}
	assert.Equal(t, "cargo.resource.name=a|cargo.resource.type=b", JoinOnPipe(props, ResourceName, ResourceType, ResourceID))
}
