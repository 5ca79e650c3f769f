package payment

// Environment selects the gateway host a credential set talks to.
type Environment int

const (
	EnvironmentUnset Environment = iota
	EnvironmentSandbox
	EnvironmentLive
)

func (e Environment) String() string {
	switch e {
	case EnvironmentSandbox:
		return "sandbox"
	case EnvironmentLive:
		return "live"
	default:
		return "unset"
	}
}

// ParseEnvironment maps "sandbox"/"test" and "live"/"production" to an Environment.
func ParseEnvironment(s string) Environment {
	switch s {
	case "sandbox", "test":
		return EnvironmentSandbox
	case "live", "production", "prod":
		return EnvironmentLive
	default:
		return EnvironmentUnset
	}
}

// Credentials identifies a merchant to the gateway.
type Credentials struct {
	PosID       string
	MerchantID  string
	CRC         string
	Environment Environment
}

// TestMode reports whether the credentials target the sandbox.
func (c Credentials) TestMode() bool {
	return c.Environment == EnvironmentSandbox
}

// CredentialMode decides where a Handler takes credentials from.
type CredentialMode int

const (
	// CredentialsGlobal uses the gateway as configured at startup.
	CredentialsGlobal CredentialMode = iota
	// CredentialsPerCall requires ViaCredentials before each call.
	CredentialsPerCall
)

func (m CredentialMode) String() string {
	if m == CredentialsPerCall {
		return "per_call"
	}
	return "global"
}

// ConfigProvider supplies the credential scope and the globally configured credentials.
type ConfigProvider interface {
	// CredentialsScope is true when credentials are supplied per call.
	CredentialsScope() bool
	Credentials() Credentials
}
