package contextkeys

// CtxKey is a custom type for context keys to avoid collisions.
type CtxKey string

// EventKey is the key for storing the verified *webhook.Event in the context.
const EventKey CtxKey = "verifiedEvent"
