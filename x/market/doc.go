/*
Package market implements an escrowed marketplace of non fungible items.

Items are minted into the escrow of the marketplace and listed for sale in
the same step. A sale moves the price from the buyer to the seller, minus a
fee collected by the marketplace owner, and hands the item over to the
buyer. The holder of an item can list it again (a resale), which charges a
tax owed to the marketplace owner until it is paid with a separate request.

Every state transition runs atomically: either all of the item registry,
the listing store and the balance ledger are updated or none of them is.
Funds are moved out of the buyer and debtor accounts on behalf of the
escrow address, so those accounts must approve the escrow address as a
spender first.

The marketplace owner and the fee percentage are kept in the "market"
configuration, initialized from genesis.
*/
package market
