/*
The sync package implements tagmirror's sync algorithm. It mirrors a subtree
of imported tags into a folder of the model, and links every generated model
variable to the tag it was generated from.

There are three types of tag nodes:
1) Folders -- These are pure containers. A folder is mirrored as a model
   folder of the same name, except for the starting node itself: its
   contents are generated directly into the target folder.
2) Structures -- These are mirrored as model objects. A structure that is an
   array isn't mirrored itself. Instead, its members are generated into the
   parent with the array's name as a prefix (e.g. `Motors_Running`).
3) Variables -- These are mirrored as model variables with a read-write
   dynamic link to the tag.

Children whose name contains "arraydimen" only describe the shape of their
parent array, and are never mirrored.

Generation is additive. Existing objects and variables are reused and
updated in place, and existing folders are reused as is unless
DeleteExistingTags is set, in which case their contents are deleted first.
Nodes that no longer have a tag are never removed automatically, so after
the nodes are generated, the target folder is checked for dynamic links that
no longer resolve.
*/
package sync
