package types

// Version is the canonical project version.
// The CLI, the wire kind sets, and the mock worker share this version
// per the lockstep versioning policy.
const Version = "0.1.0"
