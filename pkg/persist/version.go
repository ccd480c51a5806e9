package persist

// Version is the release version of the fantasydb module.
const Version = "0.1.0"
