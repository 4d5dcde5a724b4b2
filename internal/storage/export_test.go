package storage

// WithClient exposes withClient for tests.
var WithClient = withClient
