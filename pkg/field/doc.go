/*
Package field converts between raw widget tuples and typed record values.

There is one Adapter per attribute kind. Adapters are pure: Render turns a tuple
into presentation state, Normalize masks unparsable input and applies kind rules,
and Convert yields the typed value to write, or reports that nothing should be
written because every component is empty.
*/
package field
