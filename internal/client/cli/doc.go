// Package cli implements rosterctl, a small admin client for the roster API.
//
// Commands:
//
//	register  prompt for a username and password, create the account, print the token
//	login     prompt for credentials, print the session token
//	whoami    print the username owning the token given with -t
//	health    report whether the server answers
//
// The password is read without echo and wiped once it has been sent.
package cli
