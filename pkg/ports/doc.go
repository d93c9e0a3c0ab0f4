/*
Package ports defines the driven ports (interfaces) of the quill rendering bridge and its
application.

These interfaces decouple the core logic from concrete implementations, so the worker can
hold either rendering engine, templates can come from the binary or from disk, and the
storage services can be swapped for in-memory fakes in tests and reduced builds.

# Key Interfaces

  - Engine: Renders a template against a payload. Implementations need not be thread-safe.
  - TemplateSource: Resolves a template name into a descriptor (Static or Dynamic).
  - KeyValueStore: A small string key-value service (Redis or memory).
  - UserRepository / InboxRepository: CRUD access used by the HTTP handlers.

The package also ships contract suites (RunEngineContract, RunKeyValueStoreContract) that
every implementation must pass.
*/
package ports
