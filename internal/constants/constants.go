package constants

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader string    = "X-Request-Id"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleCustomer:
		return true
	default:
		return false
	}
}

// 訂單號碼前綴
const OrderNumberPrefix = "ORDER-"
