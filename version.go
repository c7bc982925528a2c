package towerbench

// Version is the release of the towerbench module.
const Version = "0.4.0"
