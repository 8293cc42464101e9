/*
Package app hosts the escrow engine.

Host serializes all calls. Every mutating call runs on its own cache wrap
of the committed store and is either written and committed as a new version
or discarded as a whole. The block time of the call is put into the context
so that the engine clock reads a single trusted value. Events are collected
while the call runs and forwarded to the configured sink only after the
commit succeeded.
*/
package app
