package types

// Version is the canonical project version.
const Version = "0.4.2"

// ProfileFormatVersion is the profile artifact version this build reads and
// writes. Artifacts with a different version are rejected.
const ProfileFormatVersion = 1
