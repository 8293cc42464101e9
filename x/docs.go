/*
Package x contains the capabilities shared by the extensions living in its
subpackages. Extensions never decide on their own who is authorized to act:
they receive an Authenticator and ask it whether the caller controls an
address.
*/
package x
