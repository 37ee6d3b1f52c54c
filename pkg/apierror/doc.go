// Package apierror is the closed error taxonomy of the tenant isolation
// core and its translation to HTTP responses. Each error kind has a fixed
// status and machine code; the envelope is always
// {"success": false, "message": ..., "code": ..., "details": {...}}.
package apierror
