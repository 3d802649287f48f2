// Package randomname generates human-friendly display names for demo
// tenants. Names are random but readable ("Cascade Industrial") so a demo
// dashboard looks like a real account rather than a synthetic one.
//
// Uniqueness is not guaranteed; callers that need unique identifiers should
// pair the name with an opaque id.
package randomname
