// Package middleware groups the Fiber middlewares shared by all features,
// such as ray-id request correlation. Feature-specific middlewares (e.g. the
// bearer-token guard) live next to their feature.
package middleware
