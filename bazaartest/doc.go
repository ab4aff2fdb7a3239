/*
Package bazaartest provides mocks and helpers for testing ledger extensions:
authenticators, messages, handlers, decorators and address generators.
*/
package bazaartest
