// Package connectors holds sources that feed documents into a session from
// outside the upload path. The filesystem connector keeps a session in step
// with a local folder.
package connectors
