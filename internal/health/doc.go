// Package health probes launched applications over HTTP.
//
// A monitor runs one probe loop per launched application, implementing the
// conventional container health-check contract: a start period during which
// failures are forgiven, a fixed probe interval and timeout, and a retry
// budget of consecutive failures before the application is flagged
// unhealthy. The monitor observes and reports; restarting is out of scope.
package health
