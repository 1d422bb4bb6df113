package sass

// Version is the version of this host library.
const Version = "0.4.0"
