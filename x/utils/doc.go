/*
Package utils contains decorators shared by every operation of the ledger:
panic recovery, logging and savepoints.
*/
package utils
