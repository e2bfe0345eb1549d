package version

// Version is set at build time via ldflags:
//
//	-ldflags "-X github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/version.Version=v1.0.0"
//
// When built without ldflags it defaults to "dev".
var Version = "dev"
