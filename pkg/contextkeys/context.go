package contextkeys

// contextKey keeps our keys from colliding with other packages.
type contextKey string

// DBContextKey stores the request-scoped *gorm.DB.
const DBContextKey = contextKey("db")
