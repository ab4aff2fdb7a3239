/*
Package cash implements the fungible balance ledger used to pay for items.

Every account holds a single uint64 balance. An account owner can approve a
spender to move up to a given amount on its behalf, which is how the
marketplace collects payments: buyers approve the marketplace escrow address
and the marketplace pulls the funds with TransferFrom.
*/
package cash
