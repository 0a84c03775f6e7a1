// Package client provides a REST client for the gt mail gateway API.
package client
