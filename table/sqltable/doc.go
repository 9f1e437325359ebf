/*
Package sqltable provides implementations of table.Table
that use SQL databases as backends.

The table uses 2 database tables:
  * One for storing the distinct categorical values
  * One for the observation rows

Rows are stored on the observations table, with their
values as references to entries in the values table.
*/
package sqltable
