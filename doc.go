/*

Package bazaar defines interfaces used throughout the marketplace ledger, such
as: storage, messages, handlers, decorators and queries.
It also contains helpers to work with addresses, conditions and context.

Extensions living under x/ build on these interfaces. The marketplace engine
(x/market) orchestrates the item registry (x/nft) and the fungible balance
ledger (x/cash), and the app package wraps every operation in a single
transactional boundary.

*/

package bazaar
