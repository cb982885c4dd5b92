// Package manifest defines the declarative deployment descriptor.
//
// A manifest (slipway.toml) declares everything needed to package and run
// a single web application: the base image, OS packages, the Python
// dependency manifest, application files, the restricted runtime user,
// environment variables, the served port, the liveness probe, and the
// launch command. Loading applies defaults and validates the structural
// invariants the build pipeline depends on.
//
// Example manifest:
//
//	[image]
//	base = "docker.io/library/python:3.9-slim"
//
//	[system]
//	packages = ["build-essential", "curl", "git"]
//
//	[python]
//	requirements = "requirements.txt"
//	upgrade_pip = true
//
//	[app]
//	files = ["app.py", "aedemobg.png"]
//
//	[env]
//	MPLBACKEND = "Agg"
//
//	[serve]
//	command = ["streamlit", "run", "app.py"]
package manifest
