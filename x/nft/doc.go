/*
Package nft implements the item registry: a record of uniquely identified,
non fungible items together with the account currently holding each of them.

Identifiers are allocated from a monotonically increasing sequence and are
stored big-endian, so that the key order equals the numeric order. Items are
never destroyed and their locator never changes after minting.
*/
package nft
