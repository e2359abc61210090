// Command muraai is the catalog CLI: add and inspect heritage items,
// trigger processing, translate text and administer the translation
// cache.
package main
