// Package gologger wires the module's glog logging into the go-job runtime so
// worker deployments draining the webhook queue share one logging setup.
package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Namespace prefixes every component logger resolved by this package.
const Namespace = "commerce-webhooks"

// ComponentName returns the namespaced logger name for a component. A blank
// component resolves to the bare namespace.
func ComponentName(component string) string {
	component = strings.TrimSpace(component)
	if component == "" {
		return Namespace
	}
	return Namespace + "." + component
}

// Resolve applies the provider > logger > nop precedence under the module
// namespace.
func Resolve(component string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(ComponentName(component), provider, logger)
}

// JobProvider maps a glog provider onto the go-job logger provider contract.
func JobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// JobLogger maps a glog logger onto the go-job logger contract.
func JobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves a component logger and returns it alongside the
// go-job bridges workers expect.
func ResolveForJob(
	component string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(component, provider, logger)
	return resolvedProvider, resolvedLogger, JobProvider(resolvedProvider), JobLogger(resolvedLogger)
}
